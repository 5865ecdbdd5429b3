/*
PURPOSE:
  Microsoft Office workloads: Excel, Word and PowerPoint.

REQUIREMENTS:
  User-specified:
  - Excel optionally loads a pushed .xlsx test workbook.
  - Word edits a pushed document or creates one; Word autosaves are removed.
  - PowerPoint needs network, pushes an image (and optionally a .pptx) and
    re-indexes media so the file picker sees them.

  Implementation-discovered:
  - Word only lists files from the Documents folder next to the working
    directory.
  - Login credentials are only useful as a pair.

ARCHITECTURE INTEGRATION:
  - Registered in: internal/workloads/registry.go
  - Uses: internal/deps policies and cleanup rules

ERROR HANDLING:
  - Parameter problems are failure.Configuration via the Bag.

IMPLEMENTATION RULES:
  - All three share the Office launch activity.

USAGE:
  d := workloads.Excel()

SELF-HEALING INSTRUCTIONS:
  - If an Office app cannot find its pushed file, check the push directory.

RELATED FILES:
  - internal/workloads/registry.go

MAINTENANCE:
  - Update views when Office renames its activities.
*/

package workloads

import (
	"strconv"

	"github.com/daryltucker/uxperf/internal/deps"
	"github.com/daryltucker/uxperf/internal/device"
	"github.com/daryltucker/uxperf/internal/workload"
)

const officeLaunchActivity = "com.microsoft.office.apphost.LaunchActivity"

// Excel creates and formats a workbook, or with use_test_file loads
// wa_test.xlsx from the dependencies directory and exercises recalculation,
// search and pinch zoom.
func Excel() *workload.Descriptor {
	return &workload.Descriptor{
		Name:        "excel",
		Package:     "com.microsoft.office.excel",
		Activity:    officeLaunchActivity,
		Description: "Standard productivity tasks with Microsoft Excel: create and format a workbook, or load a test workbook.",
		Parameters: []workload.Parameter{
			workload.DumpsysEnabled,
			{
				Name: "use_test_file", Kind: workload.KindBool, Default: false,
				Description: "Push a preconfigured .xlsx file and run the load scenario.",
			},
		},
		AutomationParams: func(b workload.Bag, _ workload.Paths) map[string]string {
			return map[string]string{"use_test_file": strconv.FormatBool(b.Bool("use_test_file"))}
		},
		Dependencies: func(b workload.Bag, p workload.Paths) []deps.Policy {
			if !b.Bool("use_test_file") {
				return nil
			}
			return []deps.Policy{deps.ByExtension{Ext: ".xlsx", RemoteDir: p.WorkingDir}}
		},
		Teardown: func(_ workload.Bag, p workload.Paths) []deps.CleanupRule {
			return []deps.CleanupRule{
				pullAllLogs(p),
				// Workbooks are recreated on each iteration.
				{Dir: p.WorkingDir, Match: deps.Suffix(".xlsx")},
			}
		},
	}
}

// MsWord either pushes an existing document into Documents or creates one
// from a template, edits it, then removes it.
func MsWord() *workload.Descriptor {
	const pkg = "com.microsoft.office.word"
	// Word's file picker opens Documents by default.
	documents := func(p workload.Paths) string { return device.Join(p.WorkingDir, "..", "Documents") }

	return &workload.Descriptor{
		Name:        "msword",
		Package:     pkg,
		Activity:    officeLaunchActivity,
		Views:       views(pkg, "com.microsoft.office.word.WordActivity", officeLaunchActivity),
		Description: "Standard productivity tasks with Microsoft Word: edit a pushed document or create one from a template.",
		Parameters: []workload.Parameter{
			workload.DumpsysEnabled,
			{
				Name: "test_type", Kind: workload.KindString, Mandatory: true,
				AllowedValues: []string{"create", "existing"},
				Description:   "existing uses a pushed document, create makes a new one in the app.",
			},
			{
				Name: "document_name", Kind: workload.KindString, Mandatory: true,
				Description: "Name of the document to push or to save as.",
			},
			{Name: "login_email", Kind: workload.KindString, Description: "Microsoft account email."},
			{Name: "login_pass", Kind: workload.KindString, Description: "Microsoft account password."},
		},
		DeviceDirs: func(p workload.Paths) []string { return []string{documents(p)} },
		AutomationParams: func(b workload.Bag, _ workload.Paths) map[string]string {
			params := map[string]string{
				"test_type":     b.String("test_type"),
				"document_name": b.String("document_name"),
			}
			email, okEmail := workload.Opt[string](b, "login_email").Get()
			pass, okPass := workload.Opt[string](b, "login_pass").Get()
			if okEmail && okPass {
				params["login_email"] = email
				params["login_pass"] = pass
			}
			return params
		},
		Dependencies: func(b workload.Bag, p workload.Paths) []deps.Policy {
			if b.String("test_type") != "existing" {
				return nil
			}
			return []deps.Policy{deps.ByName{Name: b.String("document_name"), RemoteDir: documents(p)}}
		},
		Teardown: func(b workload.Bag, p workload.Paths) []deps.CleanupRule {
			return []deps.CleanupRule{
				{Dir: documents(p), Match: deps.AnyOf(
					deps.Exact(b.String("document_name")),
					deps.Autosave("Document", ".docx"),
				)},
				{Dir: p.WorkingDir, Match: deps.PrefixSuffix("msword", ".log"), Pull: true},
			}
		},
	}
}

// PowerPoint builds a presentation with an image slide, or with
// use_test_file loads a pushed .pptx, then plays a slide show.
func PowerPoint() *workload.Descriptor {
	const pkg = "com.microsoft.office.powerpoint"
	return &workload.Descriptor{
		Name:        "powerpoint",
		Package:     pkg,
		Activity:    officeLaunchActivity,
		Views:       views(pkg, officeLaunchActivity, ".PPTActivity"),
		Description: "Standard productivity tasks with Microsoft PowerPoint: create a presentation or load a test file, then present it.",
		Parameters: []workload.Parameter{
			workload.DumpsysEnabled,
			{
				Name: "slide_template", Kind: workload.KindString, Default: "Crop",
				Description: "Template for new presentations. Spaces must be underscores.",
			},
			{
				Name: "title_name", Kind: workload.KindString, Default: "Test_Title",
				Description: "Title for new presentations. Spaces must be underscores.",
			},
			{
				Name: "use_test_file", Kind: workload.KindBool, Default: false,
				Description: "Push a preconfigured .pptx file and run the load scenario.",
			},
			{
				Name: "transition_effect", Kind: workload.KindString, Default: "None",
				Description: "Slide transition animation. Single words only.",
			},
			{
				Name: "number_of_slides", Kind: workload.KindInt, Default: 3,
				Constraint: func(v interface{}) bool {
					n := v.(int)
					return n > 0 && n < 100
				},
				ConstraintDesc: "must be between 1 and 99",
				Description:    "Number of slides to view during the slide show.",
			},
		},
		RequiresNetwork: true,
		MediaRescan:     true,
		AutomationParams: func(b workload.Bag, _ workload.Paths) map[string]string {
			return map[string]string{
				"slide_template":    b.String("slide_template"),
				"title_name":        b.String("title_name"),
				"use_test_file":     strconv.FormatBool(b.Bool("use_test_file")),
				"transition_effect": b.String("transition_effect"),
				"number_of_slides":  strconv.Itoa(b.Int("number_of_slides")),
			}
		},
		Dependencies: func(b workload.Bag, p workload.Paths) []deps.Policy {
			policies := []deps.Policy{deps.ByExtension{Ext: ".jpg", RemoteDir: p.WorkingDir}}
			if b.Bool("use_test_file") {
				policies = append(policies, deps.ByExtension{Ext: ".pptx", RemoteDir: p.WorkingDir})
			}
			return policies
		},
		Teardown: func(_ workload.Bag, p workload.Paths) []deps.CleanupRule {
			return []deps.CleanupRule{
				pullAllLogs(p),
				// Saved by the create scenario.
				{Dir: p.WorkingDir, Match: deps.Exact("Presentation.pptx")},
			}
		},
		Finalize: func(_ workload.Bag, p workload.Paths) []deps.CleanupRule {
			return []deps.CleanupRule{{Dir: p.WorkingDir, Match: deps.AnyOf(deps.Suffix(".jpg"), deps.Suffix(".pptx"))}}
		},
	}
}
