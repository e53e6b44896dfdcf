package link

var obfuscationKey = [16]byte{
	0x16, 0x6c, 0x14, 0xe6, 0x2e, 0x91, 0x0d, 0x40,
	0x21, 0x35, 0xd5, 0x40, 0x13, 0x03, 0xe9, 0x80,
}

// Obfuscate returns a copy of b XORed with the rotating key table.
// Applying it twice yields the original bytes.
func Obfuscate(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	ObfuscateInPlace(out)
	return out
}

// Deobfuscate is the inverse of Obfuscate (and the same operation).
func Deobfuscate(b []byte) []byte {
	return Obfuscate(b)
}

// ObfuscateInPlace XORs b with the key table, starting at key index 0.
func ObfuscateInPlace(b []byte) {
	for i := range b {
		b[i] ^= obfuscationKey[i%len(obfuscationKey)]
	}
}
