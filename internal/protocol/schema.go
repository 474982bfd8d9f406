package protocol

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/notification.schema.json
var notificationSchemaJSON string

var (
	notificationSchemaOnce sync.Once
	notificationSchema     *jsonschema.Schema
	notificationSchemaErr  error
)

func compiledNotificationSchema() (*jsonschema.Schema, error) {
	notificationSchemaOnce.Do(func() {
		notificationSchema, notificationSchemaErr = jsonschema.CompileString("notification.schema.json", notificationSchemaJSON)
	})
	return notificationSchema, notificationSchemaErr
}

// ValidateNotification checks n against the published notification schema.
func ValidateNotification(n Notification) error {
	s, err := compiledNotificationSchema()
	if err != nil {
		return fmt.Errorf("notification schema: %w", err)
	}
	b, err := json.Marshal(n)
	if err != nil {
		return err
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	return s.Validate(v)
}
