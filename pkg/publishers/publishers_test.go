package publishers

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadRegistryEnabledFilter(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "publishers.yaml")
	raw := `
publishers:
  - id: http1
    type: http
    enabled: false
    http:
      url: https://example.com
  - id: http2
    type: http
    enabled: true
    http:
      url: https://example.com/2
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	enabled := reg.Enabled()
	if len(enabled) != 1 || enabled[0].ID != "http2" {
		t.Fatalf("expected only http2 enabled, got %#v", enabled)
	}
}

func TestValidatePublisherConfigRejectsMissingHTTP(t *testing.T) {
	err := validatePublisherConfig(PublisherConfig{
		ID:   "h1",
		Type: TypeHTTP,
	})
	if err == nil {
		t.Fatalf("expected validation error for missing http block")
	}
}

func TestLoadRegistryAllSinkTypes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "publishers.yml")
	raw := `
publishers:
  - id: " hook "
    type: HTTP
    http:
      url: https://example.com/hook
  - id: audit
    type: sqs
    sqs:
      uri: https://sqs.us-east-1.amazonaws.com/123/audit
      region: us-east-1
      access_key_id: AKID
      secret_access_key: SECRET
  - id: alerts
    type: sns
    sns:
      topic_arn: arn:aws:sns:us-east-1:123:alerts
      region: us-east-1
  - id: lake
    type: gcp_pubsub
    gcp_pubsub:
      project_id: proj
      topic: events
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	if len(reg.All()) != 4 {
		t.Fatalf("expected 4 publishers, got %d", len(reg.All()))
	}

	hook, ok := reg.ByID("hook")
	if !ok {
		t.Fatalf("expected trimmed id lookup to succeed")
	}
	if hook.Type != TypeHTTP || hook.HTTP.Method != "POST" || hook.HTTP.TimeoutSeconds != 5 {
		t.Fatalf("unexpected http defaults %#v", hook.HTTP)
	}

	audit, _ := reg.ByID("audit")
	if audit.SQS.AccessKeyID != "AKID" || audit.SQS.SecretAccessKey != "SECRET" {
		t.Fatalf("expected inline credentials, got %#v", audit.SQS)
	}

	lake, _ := reg.ByID("lake")
	if lake.GCPPubSub == nil || lake.GCPPubSub.Topic != "events" {
		t.Fatalf("unexpected gcp config %#v", lake.GCPPubSub)
	}
}

func TestLoadRegistryJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "publishers.json")
	raw := `{"publishers":[{"id":"alerts","type":"sns","sns":{"topic_arn":"arn:aws:sns:eu-west-1:1:t","region":"eu-west-1","access_key_id":"A","secret_access_key":"S"}}]}`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	cfg, ok := reg.ByID("alerts")
	if !ok || cfg.SNS.AccessKeyID != "A" {
		t.Fatalf("unexpected sns config %#v", cfg.SNS)
	}
}

func TestLoadRegistryRejectsDuplicateIDs(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "publishers.yaml")
	raw := `
publishers:
  - id: a
    type: http
    http: {url: https://example.com}
  - id: a
    type: http
    http: {url: https://example.com/2}
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if _, err := LoadRegistry(path); err == nil {
		t.Fatalf("expected duplicate id error")
	}
}

func TestValidatePublisherConfig(t *testing.T) {
	cases := []struct {
		name string
		cfg  PublisherConfig
	}{
		{"missing id", PublisherConfig{Type: TypeHTTP, HTTP: &HTTPPublisherConfig{URL: "u"}}},
		{"unknown type", PublisherConfig{ID: "x", Type: "smtp"}},
		{"sqs without region", PublisherConfig{ID: "x", Type: TypeSQS, SQS: &SQSPublisherConfig{QueueURL: "u"}}},
		{"sns without topic", PublisherConfig{ID: "x", Type: TypeSNS, SNS: &SNSPublisherConfig{Region: "us-east-1"}}},
		{"sns half credentials", PublisherConfig{ID: "x", Type: TypeSNS, SNS: &SNSPublisherConfig{
			TopicARN: "arn", Region: "us-east-1", AWSCredentials: AWSCredentials{AccessKeyID: "A"},
		}}},
		{"pubsub without topic", PublisherConfig{ID: "x", Type: TypeGCPPubSub, GCPPubSub: &GCPPubSubPublisherConfig{ProjectID: "p"}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := validatePublisherConfig(tc.cfg); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestLoadRegistryEmptyPath(t *testing.T) {
	if _, err := LoadRegistry("  "); err == nil {
		t.Fatalf("expected error for empty path")
	}
}
