package casing

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestToSnakeKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"dueAt", "due_at"},
		{"myGradePercent", "my_grade_percent"},
		{"initialHealth", "initial_health"},
		{"class-code", "class_code"},
		{"id", "id"},
		{"already_snake", "already_snake"},
		{"v2Token", "v2_token"},
		{"HTTPStatus", "httpstatus"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ToSnakeKey(tt.in); got != tt.want {
				t.Errorf("ToSnakeKey(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestToCamelKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"due_at", "dueAt"},
		{"my_grade_letter", "myGradeLetter"},
		{"v2_token", "v2Token"},
		{"dueAt", "dueAt"},
		{"_private", "Private"},
		{"trailing_", "trailing_"},
		{"upper_Case", "upper_Case"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ToCamelKey(tt.in); got != tt.want {
				t.Errorf("ToCamelKey(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestKeyConversionIdempotent(t *testing.T) {
	keys := []string{"dueAt", "my_grade_percent", "groupName", "class-code", "stats"}
	for _, k := range keys {
		once := ToSnakeKey(k)
		if twice := ToSnakeKey(once); twice != once {
			t.Errorf("ToSnakeKey not idempotent for %q: %q then %q", k, once, twice)
		}
		camel := ToCamelKey(k)
		if again := ToCamelKey(camel); again != camel {
			t.Errorf("ToCamelKey not idempotent for %q: %q then %q", k, camel, again)
		}
	}
}

func TestDecamelizeNested(t *testing.T) {
	in := map[string]any{
		"groupId": "g1",
		"stats":   map[string]any{"doneCount": 1, "totalCount": 3},
		"tasks": []any{
			map[string]any{"dueAt": "2026-03-08T17:00:00.000Z"},
			"plainString",
		},
	}
	want := map[string]any{
		"group_id": "g1",
		"stats":    map[string]any{"done_count": 1, "total_count": 3},
		"tasks": []any{
			map[string]any{"due_at": "2026-03-08T17:00:00.000Z"},
			"plainString",
		},
	}

	got := Decamelize(in)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Decamelize() = %#v, want %#v", got, want)
	}
	if again := Decamelize(got); !reflect.DeepEqual(again, want) {
		t.Errorf("Decamelize() on snake input changed it: %#v", again)
	}
}

func TestCamelizeIdempotent(t *testing.T) {
	in := map[string]any{"my_status": "DONE", "stats": map[string]any{"done_count": 2}}
	once := Camelize(in)
	twice := Camelize(once)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("Camelize not idempotent: %#v vs %#v", once, twice)
	}
}

func TestScalarsPassThrough(t *testing.T) {
	for _, v := range []any{nil, "x", 3.5, true} {
		if got := Camelize(v); !reflect.DeepEqual(got, v) {
			t.Errorf("Camelize(%#v) = %#v", v, got)
		}
	}
}

type sample struct {
	DueAt          string `json:"dueAt"`
	MyGradePercent *int   `json:"myGradePercent,omitempty"`
	Stats          struct {
		DoneCount int `json:"doneCount"`
	} `json:"stats"`
}

func TestMarshalProducesWireKeys(t *testing.T) {
	pct := 88
	v := sample{DueAt: "2026-01-01T00:00:00.000Z", MyGradePercent: &pct}
	v.Stats.DoneCount = 4

	data, err := Marshal(v)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var generic map[string]any
	if err := json.Unmarshal(data, &generic); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	for _, key := range []string{"due_at", "my_grade_percent", "stats"} {
		if _, ok := generic[key]; !ok {
			t.Errorf("Marshal() output missing %q: %s", key, data)
		}
	}
	stats := generic["stats"].(map[string]any)
	if _, ok := stats["done_count"]; !ok {
		t.Errorf("nested key not converted: %s", data)
	}
}

func TestUnmarshalFromWireKeys(t *testing.T) {
	body := []byte(`{"due_at":"2026-01-01T00:00:00.000Z","my_grade_percent":91,"stats":{"done_count":2}}`)

	var v sample
	if err := Unmarshal(body, &v); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if v.DueAt != "2026-01-01T00:00:00.000Z" {
		t.Errorf("DueAt = %q", v.DueAt)
	}
	if v.MyGradePercent == nil || *v.MyGradePercent != 91 {
		t.Errorf("MyGradePercent = %v", v.MyGradePercent)
	}
	if v.Stats.DoneCount != 2 {
		t.Errorf("Stats.DoneCount = %d", v.Stats.DoneCount)
	}
}

func TestUnmarshalKeepsLargeIntegers(t *testing.T) {
	body := []byte(`{"big_value":9007199254740993}`)
	var v struct {
		BigValue int64 `json:"bigValue"`
	}
	if err := Unmarshal(body, &v); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if v.BigValue != 9007199254740993 {
		t.Errorf("BigValue = %d, precision lost", v.BigValue)
	}
}

func TestUnmarshalInvalidJSON(t *testing.T) {
	var v sample
	if err := Unmarshal([]byte(`{not json`), &v); err == nil {
		t.Error("Unmarshal() expected error for invalid JSON")
	}
}
