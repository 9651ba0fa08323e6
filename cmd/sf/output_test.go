package main

import (
	"bytes"
	"encoding/json"
	"testing"

	sfrest "github.com/natserract/sfrest/pkg/salesforce/rest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFields(t *testing.T) {
	fields, err := parseFields([]string{
		"Subject=Test case",
		"Priority=High",
		"IsEscalated=true",
		"Hours__c=12.5",
		"Ext__c=12345678901234567890",
		"Trailing__c=12 monkeys",
		"Note__c=a=b",
		"Empty__c=",
		`Tags__c=["x","y"]`,
	})
	require.NoError(t, err)

	assert.Equal(t, sfrest.Record{
		"Subject":     "Test case",
		"Priority":    "High",
		"IsEscalated": true,
		"Hours__c":    json.Number("12.5"),
		"Ext__c":      json.Number("12345678901234567890"),
		"Trailing__c": "12 monkeys",
		"Note__c":     "a=b",
		"Empty__c":    "",
		"Tags__c":     []interface{}{"x", "y"},
	}, fields)
}

func TestParseFields_Errors(t *testing.T) {
	tests := map[string][]string{
		"missing separator": {"Subject"},
		"empty name":        {"=value"},
		"duplicate":         {"Subject=a", "Subject=b"},
	}
	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := parseFields(args)
			assert.Error(t, err)
		})
	}
}

func TestParseFields_LargeNumbersKeepDigits(t *testing.T) {
	fields, err := parseFields([]string{"Ext__c=12345678901234567890"})
	require.NoError(t, err)

	body, err := json.Marshal(fields)
	require.NoError(t, err)
	assert.JSONEq(t, `{"Ext__c":12345678901234567890}`, string(body))
	assert.Contains(t, string(body), "12345678901234567890")
}

func TestValidateOutput(t *testing.T) {
	for _, format := range []string{"", "json", "yaml"} {
		assert.NoError(t, validateOutput(format), format)
	}
	assert.ErrorContains(t, validateOutput("xml"), `unknown output format "xml"`)
}

func TestRender(t *testing.T) {
	result := map[string]interface{}{
		"totalSize": json.Number("1"),
		"done":      true,
		"records": []interface{}{
			map[string]interface{}{"Id": "500x", "Amount__c": json.Number("12.5")},
		},
	}

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, render(&buf, "json", result))
		assert.JSONEq(t, `{"totalSize":1,"done":true,"records":[{"Id":"500x","Amount__c":12.5}]}`, buf.String())
	})

	t.Run("default is json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, render(&buf, "", map[string]string{"id": "001"}))
		assert.JSONEq(t, `{"id":"001"}`, buf.String())
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, render(&buf, "yaml", result))
		out := buf.String()
		assert.Contains(t, out, "totalSize: 1\n")
		assert.Contains(t, out, "done: true\n")
		assert.Contains(t, out, "Amount__c: 12.5")
		assert.NotContains(t, out, `"1"`)
	})

	t.Run("unknown format", func(t *testing.T) {
		err := render(&bytes.Buffer{}, "xml", result)
		assert.ErrorContains(t, err, "unknown output format")
	})
}

func TestPlain(t *testing.T) {
	assert.Equal(t, int64(42), plain(json.Number("42")))
	assert.Equal(t, 1.5, plain(json.Number("1.5")))
	assert.Equal(t, "x", plain("x"))
	assert.Equal(t, []interface{}{int64(1), "a"}, plain([]interface{}{json.Number("1"), "a"}))
}
