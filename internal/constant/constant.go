package constant

import "time"

const (
	QUERY_TIMEOUT_DURATION = 10 * time.Second

	REQUEST_SUCCESSFUL   = "Request successful"
	REQUEST_UNSUCCESSFUL = "Request unsuccessful"

	JWT_TYPE_ACCESS  = "access"

	// 32 nanoid characters over a 64 symbol alphabet, 192 bits of entropy
	SIGNING_TOKEN_LENGTH = 32

	MAX_PDF_UPLOAD_SIZE = 25 << 20
)
