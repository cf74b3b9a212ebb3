package kinds

import (
	"testing"

	"github.com/JonMunkholm/qubit/internal/core"
	"github.com/JonMunkholm/qubit/internal/i18n"
)

func TestRegisteredKinds(t *testing.T) {
	want := map[string]string{
		"actor":              "actor_i18n",
		"digital_object":     "",
		"function":           "function_i18n",
		"information_object": "information_object_i18n",
		"taxonomy":           "taxonomy_i18n",
		"term":               "term_i18n",
	}

	all := core.All()
	if len(all) != len(want) {
		t.Fatalf("registered %d kinds, want %d", len(all), len(want))
	}
	backend := i18n.NewMemory()
	for _, def := range all {
		table, ok := want[def.Info.Key]
		if !ok {
			t.Errorf("unexpected kind %q", def.Info.Key)
			continue
		}
		if def.Info.Table != def.Info.Key {
			t.Errorf("%s: Table = %q", def.Info.Key, def.Info.Table)
		}
		if table == "" {
			if def.Texts != nil {
				t.Errorf("%s: expected no translations", def.Info.Key)
			}
			continue
		}
		if def.Texts == nil {
			t.Errorf("%s: missing translations", def.Info.Key)
			continue
		}
		if got := def.Texts(backend, "en").TableName(); got != table {
			t.Errorf("%s: i18n table = %q, want %q", def.Info.Key, got, table)
		}
	}
}
