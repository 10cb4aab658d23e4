// Package elf parses, queries, and edits 32- and 64-bit little-endian
// ELF executables and shared objects: headers, sections, segments, the
// PT_DYNAMIC table, dynamic symbols, and relocations (including the GOT
// jump relocations DT_JMPREL names), plus structural edits that append
// data to a segment, add or remove sections, and patch GOT entries
// while keeping every offset, address, and table size consistent.
package elf
