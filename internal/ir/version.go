package ir

// Version constants recorded in the contract_info record.
const (
	// ContractName identifies this registry in the contract_info record.
	ContractName = "memberreg"

	// ContractVersion is the registry version written at instantiation.
	ContractVersion = "0.1.0"
)
