// Package instructions partitions a finished mosaic into build sections.
//
// Build assigns every color in use a global number, ordered by descending
// usage, and splits the grid into sectionSize x sectionSize pages in
// row-major order. Each section carries its own legend, drawn from the same
// global numbers, and a matrix of numbered cells. The result is plain data;
// laying it out as pages is left to the consumer.
package instructions
