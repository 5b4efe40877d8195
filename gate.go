package ballot

// authorize is the identity gate for restricted actions. Only proposal creation goes through it.
func authorize(acting, owner Identity) error {
	if acting != owner {
		return ErrOnlyOwnerCanPerformAction
	}
	return nil
}
