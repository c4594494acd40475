//go:build bat6debug

package core

const assertPanics = true
