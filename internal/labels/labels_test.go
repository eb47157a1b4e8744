package labels

import "testing"

func TestHumanize(t *testing.T) {
	cases := map[string]string{
		"":                "",
		"name":            "Name",
		"created_at":      "Created At",
		"provider-name":   "Provider Name",
		"instanceType":    "Instance Type",
		"data.size_bytes": "Data Size Bytes",
		"disk2size":       "Disk 2 Size",
		"ALREADY_UPPER":   "Already Upper",
	}
	for input, want := range cases {
		if got := Humanize(input); got != want {
			t.Fatalf("Humanize(%q) = %q, want %q", input, got, want)
		}
	}
}
