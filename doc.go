// Package dossier is the composition root of a case vault for OSINT
// investigations.
//
// A vault is a directory of markdown documents with YAML front-matter,
// optionally versioned with Git. Evidence files attached to a site or a
// person are stored under Attachments/<Sites|Persons>/<id>/ and described by
// one evidence record per file. Reports render an entity and its evidence
// as markdown, which can be turned into HTML, copied, or downloaded.
//
// Usage:
//
//	vault, err := dossier.Open(ctx, "./case",
//		dossier.WithAutoInit(true),
//		dossier.WithLogger(logger),
//	)
//
//	site := core.Entity{Type: core.EntitySite, ID: "42", Name: "example.org"}
//	batch, err := vault.Ingestor.Ingest(ctx, site, []evidence.File{
//		evidence.LocalFile("screenshot.png"),
//	})
package dossier
