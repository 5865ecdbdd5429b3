/*
PURPOSE:
  Adobe Reader workload: signs in, opens a PDF and searches it.

REQUIREMENTS:
  User-specified:
  - Every PDF in the dependencies directory is pushed; at least one is needed.
  - Requires network for sign-in.

  Implementation-discovered:
  - Reader only lists documents from its app-private files directory.

ARCHITECTURE INTEGRATION:
  - Registered in: internal/workloads/registry.go

ERROR HANDLING:
  - No PDFs is failure.DependencyNotFound, raised before any push.

IMPLEMENTATION RULES:
  - Finalize removes every pushed PDF.

USAGE:
  d := workloads.Reader()

SELF-HEALING INSTRUCTIONS:
  - If Reader shows no documents, check the files directory path.

RELATED FILES:
  - internal/deps/resolver.go (AllByExtension)

MAINTENANCE:
  - None.
*/

package workloads

import (
	"github.com/daryltucker/uxperf/internal/deps"
	"github.com/daryltucker/uxperf/internal/device"
	"github.com/daryltucker/uxperf/internal/workload"
)

// Reader signs in to Adobe Reader, opens a PDF and searches it.
func Reader() *workload.Descriptor {
	const pkg = "com.adobe.reader"
	// Reader only lists documents from its app-private files directory.
	files := func(p workload.Paths) string {
		return device.Join(p.ExternalStorage, "Android/data/com.adobe.reader/files")
	}

	return &workload.Descriptor{
		Name:     "reader",
		Package:  pkg,
		Activity: "com.adobe.reader.AdobeReader",
		Views: views(pkg,
			"com.adobe.reader.help.AROnboardingHelpActivity",
			"com.adobe.reader.viewer.ARSplitPaneActivity",
			"com.adobe.reader.viewer.ARViewerActivity",
		),
		Description: "Signs in to Adobe Reader, opens a PDF and performs two word searches.",
		Parameters: []workload.Parameter{
			workload.DumpsysEnabled,
			{Name: "email", Kind: workload.KindString, Default: "email@gmail.com", Description: "Adobe account email."},
			{Name: "password", Kind: workload.KindString, Default: "password", Description: "Adobe account password."},
			{
				Name: "document_name", Kind: workload.KindString, Default: "Getting_Started.pdf",
				Description: "PDF to open. Every .pdf in the dependencies directory is pushed.",
			},
			{Name: "first_search_word", Kind: workload.KindString, Default: "read"},
			{Name: "second_search_word", Kind: workload.KindString, Default: "the"},
		},
		RequiresNetwork: true,
		DeviceDirs:      func(p workload.Paths) []string { return []string{files(p)} },
		AutomationParams: func(b workload.Bag, _ workload.Paths) map[string]string {
			return map[string]string{
				"email":              b.String("email"),
				"password":           b.String("password"),
				"filename":           b.String("document_name"),
				"first_search_word":  b.String("first_search_word"),
				"second_search_word": b.String("second_search_word"),
			}
		},
		Dependencies: func(_ workload.Bag, p workload.Paths) []deps.Policy {
			return []deps.Policy{deps.AllByExtension{Ext: ".pdf", RemoteDir: files(p)}}
		},
		Teardown: func(_ workload.Bag, p workload.Paths) []deps.CleanupRule {
			return []deps.CleanupRule{pullAllLogs(p)}
		},
		Finalize: func(_ workload.Bag, p workload.Paths) []deps.CleanupRule {
			return []deps.CleanupRule{{Dir: files(p), Match: deps.Suffix(".pdf")}}
		},
	}
}
