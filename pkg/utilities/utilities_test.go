package utilities

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

type mockConfigJson struct {
	Name  string `json:"name"`
	Port  uint16 `json:"port"`
	Debug bool   `json:"debug"`
}

type mockConfig struct {
	Name  string
	Port  uint16
	Debug bool
}

func (mcj mockConfigJson) ConvertToDomain() mockConfig {
	return mockConfig{
		Name:  mcj.Name,
		Port:  mcj.Port,
		Debug: mcj.Debug,
	}
}

type mockItemJson struct {
	Id   int    `json:"id"`
	Name string `json:"name"`
}

type mockItem struct {
	Id   int
	Name string
}

func (mij mockItemJson) ConvertToDomain() mockItem {
	return mockItem{Id: mij.Id, Name: mij.Name}
}

func TestReadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	expected := mockConfigJson{Name: "passport-oracle", Port: 9000, Debug: true}
	raw, err := json.Marshal(expected)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, raw, 0644); err != nil {
		t.Fatal(err)
	}

	config, err := ReadConfig[mockConfigJson, mockConfig](path)
	if err != nil {
		t.Fatalf("ReadConfig failed: %v", err)
	}

	if !reflect.DeepEqual(config, expected.ConvertToDomain()) {
		t.Errorf("ReadConfig = %+v, expected %+v", config, expected.ConvertToDomain())
	}
}

func TestReadConfigMissingFile(t *testing.T) {
	if _, err := ReadConfig[mockConfigJson, mockConfig]("does-not-exist.json"); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestReadConfigMalformedJson(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := ReadConfig[mockConfigJson, mockConfig](path); err == nil {
		t.Error("expected error for malformed config file")
	}
}

func TestConvertJsonArrayToDomain(t *testing.T) {
	input := []mockItemJson{{Id: 1, Name: "first"}, {Id: 2, Name: "second"}}

	converted := ConvertJsonArrayToDomain[mockItemJson, mockItem](input)

	expected := []mockItem{{Id: 1, Name: "first"}, {Id: 2, Name: "second"}}
	if !reflect.DeepEqual(converted, expected) {
		t.Errorf("ConvertJsonArrayToDomain = %+v, expected %+v", converted, expected)
	}
}

func TestSerialize(t *testing.T) {
	type payload struct {
		Data    string `json:"data"`
		Success bool   `json:"success"`
	}

	raw, err := Serialize[payload](payload{Data: "ok", Success: true})
	if err != nil {
		t.Fatal(err)
	}

	var decoded payload
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Data != "ok" || !decoded.Success {
		t.Errorf("round-trip mismatch: %+v", decoded)
	}
}
