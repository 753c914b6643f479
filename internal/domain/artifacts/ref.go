package artifacts

// Type enum for uploaded artifacts
type Type string

const (
	TypeCode    Type = "code"
	TypeModel   Type = "model"
	TypeDataset Type = "dataset"
	TypeDoc     Type = "doc"
	TypeLogs    Type = "logs"
)

// Ref is an immutable handle to a stored artifact. The bytes live in the
// artifact store under Key; everything here is metadata.
type Ref struct {
	ID     string `json:"id"`
	Type   Type   `json:"type"`
	Key    string `json:"key"`
	SHA256 string `json:"sha256"`
	Size   int64  `json:"size"`
}
