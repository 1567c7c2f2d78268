package defaults

import _ "embed"

// Embedded defaults documents. Load uses them for any path left empty.

//go:embed data/atp-defaults.yaml
var rawATP []byte

//go:embed data/organization-defaults.yaml
var rawOrganization []byte

//go:embed data/property-defaults.yaml
var rawProperty []byte

//go:embed data/end-user-device-defaults.yaml
var rawEndUserDevice []byte

//go:embed data/networking-defaults.yaml
var rawNetworking []byte

//go:embed data/transmission-rate-defaults.yaml
var rawTransmissionRate []byte
