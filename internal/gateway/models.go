package gateway

// SourceFormat identifies which wire shape a notification arrived in.
type SourceFormat string

const (
	FormatHostedCheckout SourceFormat = "hosted_checkout"
	FormatLegacySigned   SourceFormat = "legacy_signed"
	FormatRedirect       SourceFormat = "redirect"
)

// Notification is one raw inbound payment notification as received at the
// HTTP boundary, before any format detection.
type Notification struct {
	Method      string
	ContentType string
	Body        []byte
	Query       map[string]string
}

// Outcome is the canonical result of normalizing a notification. Downstream
// settlement never branches on the source format.
type Outcome struct {
	OrderID      string            `json:"order_id"`
	IsSuccess    bool              `json:"is_success"`
	AuthCode     string            `json:"auth_code,omitempty"`
	ErrorMessage string            `json:"error_message,omitempty"`
	SourceFormat SourceFormat      `json:"source_format"`
	// Ambiguous marks notifications that carried no recognized result field.
	// Such outcomes are never treated as success.
	Ambiguous bool              `json:"ambiguous,omitempty"`
	RawFields map[string]string `json:"-"`
}
