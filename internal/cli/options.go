package cli

// RunOptions carries the configuration for the run command.
type RunOptions struct {
	FlowDir   string
	FlowID    string
	SessionID string
	Fresh     bool
	Debug     bool
	Plain     bool
	JSON      bool

	Store     string // "memory", "file" or "redis"
	StorePath string
	RedisAddr string
	RedisPass string
	RedisDB   int

	// EncryptionKey is a base64-encoded 32-byte AES key; when set,
	// sessions are encrypted at rest.
	EncryptionKey string
	// PIIPatterns are regexes over slot keys to mask before persisting.
	PIIPatterns []string
}
