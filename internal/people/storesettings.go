package people

type StoreSettings struct {
	URI              string            `json:"uri,omitempty"`
	CredentialsQuery string            `json:"credentials_query,omitempty"`
	DetailsQuery     string            `json:"details_query,omitempty"`
	Insert           string            `json:"insert,omitempty"`
	Parameters       map[string]string `json:"parameters,omitempty"`
}
