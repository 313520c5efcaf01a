package types

// Kind classifies a file attached to a relocation job.
type Kind string

const (
	// KindRawUserData is the encrypted tarball the owner uploaded.
	KindRawUserData Kind = "RAW_USER_DATA"
)

func (k Kind) String() string {
	return string(k)
}

// Valid reports whether k is a known attachment kind.
func (k Kind) Valid() bool {
	return k == KindRawUserData
}
