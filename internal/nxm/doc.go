package nxm

// Package nxm parses and validates nxm:// download requests handed over by
// Nexus Mods. A parsed request carries the signed query fields required to
// resolve a time-boxed CDN link.
