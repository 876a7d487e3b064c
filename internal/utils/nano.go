package utils

import gonanoid "github.com/matoous/go-nanoid/v2"

// IDSize is the length of every record id.
const IDSize = 32

const idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

func NanoID() string {
	return NanoIDSize(IDSize)
}

// NanoIDSize returns an id of the given length; zero means IDSize.
func NanoIDSize(size int) string {
	if size == 0 {
		size = IDSize
	}

	return gonanoid.MustGenerate(idAlphabet, size)
}
