package libinjection

import "testing"

func TestLibinjection(t *testing.T) {
	d := NewDetector(nil, Options{})
	if res := d.Classify([]byte("' or ''='")); !res.IsInjection {
		t.Error("sql injection not detected")
	}
	if res := d.Classify([]byte("hello world")); res.IsInjection {
		t.Errorf("false positive with fingerprint %q", res.Fingerprint)
	}
}
