package domain

// ContractPair binds an asset contract of the source domain to its wrapped contract on the
// destination domain.
type ContractPair struct {
	Local     string
	Remote    string
	CreatedAt int64
}
