package gateway

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"velocar/pkg/logger"
)

// Normalizer collapses the three inbound notification shapes into one
// canonical Outcome so settlement never sees the wire format.
type Normalizer struct {
	macKey string
	log    *logger.Logger
}

// NewNormalizer creates a normalizer. An empty macKey disables signed-callback
// support: any notification carrying a MAC is rejected rather than accepted
// unverified.
func NewNormalizer(macKey string) *Normalizer {
	return &Normalizer{
		macKey: macKey,
		log:    logger.GetDefault(),
	}
}

// Normalize parses a raw notification into a canonical Outcome or rejects it
// with ErrMalformedNotification, ErrAuthenticationFailed or ErrMissingOrderID.
func (n *Normalizer) Normalize(raw Notification) (*Outcome, error) {
	format, fields, err := n.parse(raw)
	if err != nil {
		return nil, err
	}

	if format != FormatHostedCheckout {
		if err := n.verifySignature(format, fields); err != nil {
			return nil, err
		}
	}

	outcome := mapFields(fields, format)
	if outcome.OrderID == "" {
		return nil, ErrMissingOrderID
	}
	if outcome.Ambiguous {
		n.log.Warn("notification carried no recognized result field, treating as failure",
			"order_id", outcome.OrderID, "format", string(format))
	}
	return outcome, nil
}

// parse detects the wire format and extracts a flat field map.
func (n *Normalizer) parse(raw Notification) (SourceFormat, map[string]string, error) {
	body := strings.TrimSpace(string(raw.Body))

	if strings.Contains(raw.ContentType, "application/json") || strings.HasPrefix(body, "{") {
		fields, err := parseJSONFields([]byte(body))
		if err != nil {
			return "", nil, fmt.Errorf("%w: %v", ErrMalformedNotification, err)
		}
		return FormatHostedCheckout, fields, nil
	}

	if body != "" && strings.Contains(body, "=") {
		values, err := url.ParseQuery(body)
		if err != nil {
			return "", nil, fmt.Errorf("%w: %v", ErrMalformedNotification, err)
		}
		return FormatLegacySigned, flattenValues(values), nil
	}

	if raw.Method == "GET" && len(raw.Query) > 0 {
		return FormatRedirect, raw.Query, nil
	}

	return "", nil, ErrMalformedNotification
}

// verifySignature enforces the legacy MAC. Signed POST callbacks must always
// carry a valid MAC; browser redirects are only checked when they carry one,
// since the gateway does not sign every return URL.
func (n *Normalizer) verifySignature(format SourceFormat, fields map[string]string) error {
	received := fields[macField]

	if format == FormatRedirect && received == "" {
		return nil
	}
	if n.macKey == "" || received == "" {
		return ErrAuthenticationFailed
	}
	if !VerifyMAC(fields, received, n.macKey) {
		return ErrAuthenticationFailed
	}
	return nil
}

// mapFields converges format-specific field names onto the canonical shape.
func mapFields(fields map[string]string, format SourceFormat) *Outcome {
	outcome := &Outcome{
		OrderID:      firstNonEmpty(fields["orderId"], fields["codTrans"], fields["order_id"]),
		AuthCode:     firstNonEmpty(fields["codAut"], fields["authorizationCode"], fields["operationId"]),
		ErrorMessage: firstNonEmpty(fields["messaggio"], fields["errorMessage"]),
		SourceFormat: format,
		RawFields:    fields,
	}

	switch {
	case fields["operationResult"] != "":
		result := fields["operationResult"]
		outcome.IsSuccess = result == "AUTHORIZED" || result == "EXECUTED"
		if !outcome.IsSuccess && outcome.ErrorMessage == "" {
			outcome.ErrorMessage = result
		}
	case fields["esito"] != "":
		esito := fields["esito"]
		outcome.IsSuccess = esito == "OK"
		if esito == "ANNULLO" && outcome.ErrorMessage == "" {
			outcome.ErrorMessage = "payment cancelled by user"
		}
	default:
		// No recognized result field: never a success.
		outcome.IsSuccess = false
		outcome.Ambiguous = true
	}

	return outcome
}

// parseJSONFields flattens a JSON document into string fields. Nested objects
// contribute their leaves under the leaf key, which is how the hosted
// checkout wraps the interesting fields in an operation envelope.
func parseJSONFields(body []byte) (map[string]string, error) {
	var doc map[string]interface{}
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, err
	}

	fields := make(map[string]string)
	flattenJSON(doc, fields)
	return fields, nil
}

func flattenJSON(doc map[string]interface{}, out map[string]string) {
	for k, v := range doc {
		switch val := v.(type) {
		case map[string]interface{}:
			flattenJSON(val, out)
		case string:
			out[k] = val
		case float64:
			out[k] = strconv.FormatFloat(val, 'f', -1, 64)
		case bool:
			out[k] = strconv.FormatBool(val)
		}
	}
}

func flattenValues(values url.Values) map[string]string {
	fields := make(map[string]string, len(values))
	for k := range values {
		fields[k] = values.Get(k)
	}
	return fields
}

func firstNonEmpty(candidates ...string) string {
	for _, c := range candidates {
		if c != "" {
			return c
		}
	}
	return ""
}
