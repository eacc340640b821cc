// Package main is the entry point of CineVerse Captions, a community site for movies, subtitles,
// articles and micro-posts. The web service runs on Fiber with GORM for persistence; maintenance
// commands (plan seeding, ad code generation, payment linking) share the same binary.
package main
