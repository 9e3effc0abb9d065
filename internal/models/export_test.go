package models

// SetCodeSuffix swaps the transaction code suffix generator and returns a
// function restoring the previous one.
func SetCodeSuffix(f func() string) func() {
	prev := codeSuffix
	codeSuffix = f
	return func() { codeSuffix = prev }
}
