package game_test

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

func compileSchema(t *testing.T, name string) *jsonschema.Schema {
	t.Helper()
	s, err := jsonschema.Compile(filepath.Join("..", "..", "schemas", name))
	if err != nil {
		t.Fatalf("compile %s: %v", name, err)
	}
	return s
}

func TestActionRequestSchema(t *testing.T) {
	schema := compileSchema(t, "action_request.schema.json")

	valid := []string{
		`{"action":"look"}`,
		`{"action":"create_player","args":{"name":"Arlen"}}`,
		`{"action":"move","args":{"to":"north"}}`,
		`{"action":"attack","args":{"target":"rat"}}`,
		`{"action":"offer_trade","args":{"to_player":"Beryl","offer_items":{"coin":3},"request_items":{"healing_herb":1}}}`,
		`{"action":"accept_trade","args":{"trade_id":"abc123"}}`,
		`{"action":"party_invite","args":{"target_player":"Beryl"}}`,
		`{"action":"accept_party_invite","args":{"invite_id":"inv1"}}`,
		`{"action":"reputation"}`,
	}
	for _, sample := range valid {
		var v any
		if err := json.Unmarshal([]byte(sample), &v); err != nil {
			t.Fatalf("unmarshal %s: %v", sample, err)
		}
		if err := schema.Validate(v); err != nil {
			t.Errorf("sample %s rejected: %v", sample, err)
		}
	}

	invalid := []string{
		`{}`,
		`{"action":"dance"}`,
		`{"action":"look","verb":"look"}`,
		`{"action":"move","args":{"destination":"north"}}`,
		`{"action":"offer_trade","args":{"offer_items":{"coin":"three"}}}`,
	}
	for _, sample := range invalid {
		var v any
		if err := json.Unmarshal([]byte(sample), &v); err != nil {
			t.Fatalf("unmarshal %s: %v", sample, err)
		}
		if err := schema.Validate(v); err == nil {
			t.Errorf("sample %s accepted, want rejection", sample)
		}
	}
}

func TestActionResponseSchema(t *testing.T) {
	schema := compileSchema(t, "action_response.schema.json")

	valid := []string{
		`{"ok":false,"error":"Unknown player_id."}`,
		`{"ok":true,"messages":["You travel to Forest."],"state":{
			"player":{"id":"p1","name":"Arlen"},
			"location":{"id":"forest","name":"Forest","description":"Tall pines.","exits":[{"to":"north_road","label":"south"}]},
			"entities":[{"type":"monster","id":"rat_1","name":"Rat","hp":5}]
		}}`,
		`{"ok":true,"messages":["Trade offer created (ID: abc)"],"state":{"player":{},"trade_id":"abc"}}`,
	}
	for _, sample := range valid {
		var v any
		if err := json.Unmarshal([]byte(sample), &v); err != nil {
			t.Fatalf("unmarshal %s: %v", sample, err)
		}
		if err := schema.Validate(v); err != nil {
			t.Errorf("sample rejected: %v\n%s", err, sample)
		}
	}

	invalid := []string{
		`{}`,
		`{"ok":false}`,
		`{"ok":true,"state":{"location":{"id":"forest"}}}`,
	}
	for _, sample := range invalid {
		var v any
		if err := json.Unmarshal([]byte(sample), &v); err != nil {
			t.Fatalf("unmarshal %s: %v", sample, err)
		}
		if err := schema.Validate(v); err == nil {
			t.Errorf("sample %s accepted, want rejection", sample)
		}
	}
}
