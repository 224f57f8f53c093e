package jira

import (
	"fmt"
	"maps"
	"os"

	"gopkg.in/yaml.v3"
)

// Logical names of the custom fields the mapper reads directly.
const (
	FieldCustomer           = "customer"
	FieldCountry            = "country"
	FieldSeverity           = "severity"
	FieldDetectionTime      = "detectionTime"
	FieldDetectionDevice    = "detectionDevice"
	FieldDetectionDeviceID  = "detectionDeviceId"
	FieldSourceIP           = "sourceIp"
	FieldDestinationIP      = "destinationIp"
	FieldAttackType         = "attackType"
	FieldAttackCategory     = "attackCategory"
	FieldScenarioName       = "scenarioName"
	FieldAction             = "action"
	FieldThreatMatched      = "threatMatched"
	FieldImpactAnalysis     = "impactAnalysis"
	FieldThreatIntelligence = "threatIntelligence"
	FieldCount              = "count"
)

// FieldCatalog maps logical field names to remote custom field IDs.
type FieldCatalog map[string]string

// DefaultFieldCatalog returns the custom fields of the security event issue type.
func DefaultFieldCatalog() FieldCatalog {
	return FieldCatalog{
		FieldCustomer:           "customfield_10211",
		FieldCountry:            "customfield_10218",
		FieldSeverity:           "customfield_10222",
		FieldDetectionTime:      "customfield_10214",
		FieldDetectionDevice:    "customfield_10212",
		FieldDetectionDeviceID:  "customfield_10213",
		"detectionPath":         "customfield_10224",
		"detectionFile":         "customfield_10223",
		"detectionStart":        "customfield_10241",
		"detectionEnd":          "customfield_10242",
		FieldSourceIP:           "customfield_10216",
		FieldDestinationIP:      "customfield_10251",
		"sourcePort":            "customfield_10252",
		"destinationPort":       "customfield_10219",
		"direction":             "customfield_10215",
		"host":                  "customfield_10235",
		FieldAction:             "customfield_10226",
		"hashValue":             "customfield_10225",
		FieldScenarioName:       "customfield_10228",
		FieldThreatMatched:      "customfield_10244",
		"userAgent":             "customfield_10245",
		FieldAttackType:         "customfield_10467",
		FieldAttackCategory:     "customfield_10468",
		"region":                "customfield_10229",
		"url":                   "customfield_10230",
		"query":                 "customfield_10231",
		"payload":               "customfield_10232",
		"httpMethod":            "customfield_10233",
		"accountId":             "customfield_10234",
		"detectionRule":         "customfield_10238",
		"detectionDetails":      "customfield_10239",
		"detectionPattern":      "customfield_10240",
		FieldCount:              "customfield_10243",
		"detectionName":         "customfield_10249",
		"attackPattern":         "customfield_10246",
		FieldImpactAnalysis:     "customfield_10247",
		FieldThreatIntelligence: "customfield_10248",
		"incidentId":            "customfield_10163",
		"incidentUrl":           "customfield_10105",
		"responseCode":          "customfield_10258",
	}
}

type fieldCatalogFile struct {
	Fields map[string]string `yaml:"fields"`
}

// LoadFieldCatalog returns the default catalog with the entries of the YAML
// file at path merged over it. An empty path returns the defaults.
func LoadFieldCatalog(path string) (FieldCatalog, error) {
	catalog := DefaultFieldCatalog()
	if path == "" {
		return catalog, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read field catalog: %w", err)
	}

	var file fieldCatalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse field catalog %s: %w", path, err)
	}

	for name, id := range file.Fields {
		if id == "" {
			delete(catalog, name)
			continue
		}
		catalog[name] = id
	}
	return catalog, nil
}

// IDs returns the remote field IDs of the catalog.
func (c FieldCatalog) IDs() []string {
	ids := make([]string, 0, len(c))
	for id := range maps.Values(c) {
		ids = append(ids, id)
	}
	return ids
}

// Extract decodes every catalog field present in raw.
func (c FieldCatalog) Extract(raw map[string]any) map[string]FieldValue {
	values := make(map[string]FieldValue, len(c))
	for name, id := range c {
		v, ok := raw[id]
		if !ok {
			continue
		}
		if fv := DecodeFieldValue(v); !fv.IsEmpty() {
			values[name] = fv
		}
	}
	return values
}
