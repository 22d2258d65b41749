// Prints a fresh random key suitable for the SECRET_KEY setting
package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
)

const secretKeyBytesLen = 32

func main() {
	b := make([]byte, secretKeyBytesLen)

	_, err := rand.Read(b)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error while generating secret key: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(hex.EncodeToString(b))
}
