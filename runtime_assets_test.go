package intake

import (
	"io/fs"
	"strings"
	"testing"
)

func TestRuntimeAssetsFSContainsPlacesRuntime(t *testing.T) {
	data, err := fs.ReadFile(RuntimeAssetsFS(), RuntimeScript)
	if err != nil {
		t.Fatalf("expected runtime script to be readable: %v", err)
	}
	for _, want := range []string{"place_changed", "formatted_address", "clearInstanceListeners", "status.script", "document.createElement('script')"} {
		if !strings.Contains(string(data), want) {
			t.Fatalf("expected runtime script to reference %q", want)
		}
	}
}
