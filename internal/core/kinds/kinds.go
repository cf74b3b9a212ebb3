// Package kinds registers the hierarchical entity kinds of a Qubit
// database. Import it for side effects:
//
//	import _ "github.com/JonMunkholm/qubit/internal/core/kinds"
package kinds

import (
	"github.com/JonMunkholm/qubit/internal/core"
	"github.com/JonMunkholm/qubit/internal/i18n"
	"github.com/JonMunkholm/qubit/internal/model"
)

func init() {
	core.Register(core.KindDefinition{
		Info: core.KindInfo{
			Key:       "information_object",
			Label:     "Archival descriptions",
			ClassName: model.ClassName("InformationObject"),
			RootID:    model.InformationObjectRootID,
		},
		Texts: texts(i18n.InformationObjectTable),
	})
	core.Register(core.KindDefinition{
		Info: core.KindInfo{
			Key:       "actor",
			Label:     "Actors",
			ClassName: model.ClassName("Actor"),
			RootID:    model.ActorRootID,
		},
		Texts: texts(i18n.ActorTable),
	})
	core.Register(core.KindDefinition{
		Info: core.KindInfo{
			Key:       "taxonomy",
			Label:     "Taxonomies",
			ClassName: model.ClassName("Taxonomy"),
			RootID:    model.TaxonomyRootID,
		},
		Texts: texts(i18n.TaxonomyTable),
	})
	core.Register(core.KindDefinition{
		Info: core.KindInfo{
			Key:       "term",
			Label:     "Terms",
			ClassName: model.ClassName("Term"),
			RootID:    model.TermRootID,
		},
		Texts: texts(i18n.TermTable),
	})
	core.Register(core.KindDefinition{
		Info: core.KindInfo{
			Key:       "function",
			Label:     "Functions",
			ClassName: model.ClassName("Function"),
		},
		Texts: texts(i18n.FunctionTable),
	})
	// Digital objects carry no translated columns.
	core.Register(core.KindDefinition{
		Info: core.KindInfo{
			Key:       "digital_object",
			Label:     "Digital objects",
			ClassName: model.ClassName("DigitalObject"),
		},
	})
}

func texts[F ~string](table i18n.Table[F]) core.TextsFunc {
	return func(backend i18n.Backend, fallback string) i18n.Texts {
		return i18n.New(table, backend, fallback)
	}
}
