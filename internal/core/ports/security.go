package ports

// SecurityPort encrypts values before they are written to a token store.
type SecurityPort interface {
	Encrypt(plaintext []byte) (ciphertext []byte, err error)
	Decrypt(ciphertext []byte) (plaintext []byte, err error)

	// SealString encrypts and base64-encodes a string for text columns.
	SealString(plaintext string) (string, error)
	// OpenString reverses SealString.
	OpenString(sealed string) (string, error)
}
