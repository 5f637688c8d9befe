package fields

import "testing"

func TestParseReplyDirectJSON(t *testing.T) {
	result := ParseReply(`{"document_content": {"full_name": "Jane Roe", "country": "USA"}}`)
	if !result.Structured {
		t.Fatalf("expected structured result")
	}
	if result.Fields["full_name"] != "Jane Roe" || result.Fields["country"] != "USA" {
		t.Fatalf("unexpected fields: %v", result.Fields)
	}
}

func TestParseReplyStripsCodeFences(t *testing.T) {
	raw := "```json\n{\"document_content\": {\"license_number\": \"D1234567\"}}\n```"
	result := ParseReply(raw)
	if !result.Structured {
		t.Fatalf("expected structured result for fenced JSON")
	}
	if result.Fields["license_number"] != "D1234567" {
		t.Fatalf("unexpected fields: %v", result.Fields)
	}
}

func TestParseReplyToleratesMissingWrapper(t *testing.T) {
	result := ParseReply(`{"full_name": "Jane Roe"}`)
	if !result.Structured {
		t.Fatalf("expected structured result")
	}
	if result.Fields["full_name"] != "Jane Roe" {
		t.Fatalf("unexpected fields: %v", result.Fields)
	}
}

func TestParseReplyRejectsTrailingProse(t *testing.T) {
	raw := "{\"document_content\": {\"full_name\": \"Jane Roe\"}}\nLet me know if you need anything else."
	result := ParseReply(raw)
	if result.Structured {
		t.Fatalf("reply with text after the JSON object must be unstructured, got fields %v", result.Fields)
	}
	if result.Raw != raw {
		t.Fatalf("raw text must be preserved verbatim, got %q", result.Raw)
	}
}

func TestParseReplyUnstructuredFallback(t *testing.T) {
	raw := "I could not read the document clearly, but it looks like a passport."
	result := ParseReply(raw)
	if result.Structured {
		t.Fatalf("expected unstructured result")
	}
	if result.Raw != raw {
		t.Fatalf("raw text must be preserved verbatim, got %q", result.Raw)
	}
	if len(result.Fields) != 0 {
		t.Fatalf("unstructured result must carry no fields: %v", result.Fields)
	}
}

func TestParseReplyDropsNullsKeepsNumbersExact(t *testing.T) {
	result := ParseReply(`{"document_content": {"card_number": 1234567890123, "category": "C09", "middle_name": null, "minor": false}}`)
	if !result.Structured {
		t.Fatalf("expected structured result")
	}
	if _, ok := result.Fields["middle_name"]; ok {
		t.Fatalf("null values must be dropped: %v", result.Fields)
	}
	if result.Fields["card_number"] != "1234567890123" {
		t.Fatalf("number literal must survive stringification exactly, got %q", result.Fields["card_number"])
	}
	if result.Fields["minor"] != "false" {
		t.Fatalf("bool stringification = %q", result.Fields["minor"])
	}
}

func TestParseReplyKeepsNestedValuesAsJSON(t *testing.T) {
	result := ParseReply(`{"document_content": {"addresses": ["1 Main St", "2 Oak Ave"]}}`)
	if !result.Structured {
		t.Fatalf("expected structured result")
	}
	if result.Fields["addresses"] != `["1 Main St","2 Oak Ave"]` {
		t.Fatalf("nested value = %q", result.Fields["addresses"])
	}
}

func TestParseReplyEmptyInput(t *testing.T) {
	result := ParseReply("")
	if result.Structured {
		t.Fatalf("expected unstructured result for empty input")
	}
	if result.Raw != "" {
		t.Fatalf("Raw = %q, want empty", result.Raw)
	}
}
