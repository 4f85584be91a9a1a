// Package textutil derives Python package names and human titles from
// project names.
package textutil
