// Package ciutil locates the project tree and environment-provided
// settings consistently on developer machines and CI runners.
package ciutil
