/*
PURPOSE:
  Google workloads: Google Slides and YouTube.

REQUIREMENTS:
  User-specified:
  - Slides optionally pushes a local presentation under a recognisable name.
  - YouTube plays a video found by search, trending, home or my_videos.

  Implementation-discovered:
  - A search without a search term is a configuration error.
  - Slides looks for files in <external storage>/Download.

ARCHITECTURE INTEGRATION:
  - Registered in: internal/workloads/registry.go

ERROR HANDLING:
  - Cross-parameter rules return failure.Configuration from Validate.

IMPLEMENTATION RULES:
  - Pushed files carry testFilePrefix so finalize only removes our copies.

USAGE:
  d := workloads.YouTube()

SELF-HEALING INSTRUCTIONS:
  - If a search term with spaces fails, check underscored.

RELATED FILES:
  - internal/workloads/registry.go

MAINTENANCE:
  - Keep video_source values in sync with the automation jar.
*/

package workloads

import (
	"strconv"

	"github.com/daryltucker/uxperf/internal/deps"
	"github.com/daryltucker/uxperf/internal/device"
	"github.com/daryltucker/uxperf/internal/failure"
	"github.com/daryltucker/uxperf/internal/workload"
)

// testFilePrefix marks files uxperf pushed so they can be told apart from
// the user's own files in shared folders.
const testFilePrefix = "wa_test_"

// GoogleSlides either navigates a pushed presentation or creates and edits
// one in PowerPoint compatibility mode.
func GoogleSlides() *workload.Descriptor {
	const pkg = "com.google.android.apps.docs.editors.slides"
	// Slides' file picker opens Download by default.
	download := func(p workload.Paths) string { return device.Join(p.WorkingDir, "..", "Download") }
	testFile := func(b workload.Bag) workload.Option[string] {
		if f, ok := workload.Opt[string](b, "local_file").Get(); ok {
			return workload.Some(testFilePrefix + f)
		}
		return workload.None[string]()
	}

	return &workload.Descriptor{
		Name:    "googleslides",
		Package: pkg,
		Views: views(pkg,
			"com.google.android.apps.docs.quickoffice.filepicker.FilePickerActivity",
			"com.google.android.apps.docs.editors.shared.filepicker.FilePickerActivity",
			"com.google.android.apps.docs.quickoffice.filepicker.LocalSaveAsActivity",
			"com.qo.android.quickpoint.Quickpoint",
			"com.google.android.apps.docs.app.DocsPreferencesActivity",
			"com.google.android.apps.docs.app.DocListActivity",
			"com.google.android.apps.docs.welcome.warmwelcome.TrackingWelcomeActivity",
			"com.google.android.apps.docs.app.NewMainProxyActivity",
		),
		Description: "Standard productivity tasks with Google Slides: navigate a pushed presentation or create and edit a new one.",
		Parameters: []workload.Parameter{
			workload.DumpsysEnabled,
			{
				Name: "local_file", Kind: workload.KindString,
				Description: "Presentation in the dependencies directory to push. A new file is created in the app when unset.",
			},
			{
				Name: "slide_count", Kind: workload.KindInt, Default: 5,
				Description: "Number of slides in local_file; sets the number of swipes in the slide show.",
			},
		},
		ResultsFileParam: "results_file",
		DeviceDirs:       func(p workload.Paths) []string { return []string{download(p)} },
		AutomationParams: func(b workload.Bag, _ workload.Paths) map[string]string {
			f, ok := testFile(b).Get()
			if !ok {
				return nil
			}
			return map[string]string{
				"local_file":  f,
				"slide_count": strconv.Itoa(b.Int("slide_count")),
			}
		},
		Dependencies: func(b workload.Bag, p workload.Paths) []deps.Policy {
			local, ok := workload.Opt[string](b, "local_file").Get()
			if !ok {
				return nil
			}
			return []deps.Policy{deps.ByName{Name: local, RemoteDir: download(p), RemoteName: testFile(b).OrElse("")}}
		},
		Teardown: pullLogs("googleslides"),
		Finalize: func(b workload.Bag, p workload.Paths) []deps.CleanupRule {
			f, ok := testFile(b).Get()
			if !ok {
				return nil
			}
			return []deps.CleanupRule{{Dir: download(p), Match: deps.Exact(f)}}
		},
	}
}

// YouTube plays a video picked from the home feed, my videos, trending or a
// search.
func YouTube() *workload.Descriptor {
	const pkg = "com.google.android.youtube"
	return &workload.Descriptor{
		Name:        "youtube",
		Package:     pkg,
		Views:       views(pkg, "com.google.android.apps.youtube.app.WatchWhileActivity"),
		Description: "Plays a YouTube video chosen from home, my videos, trending or search results.",
		Parameters: []workload.Parameter{
			workload.DumpsysEnabled,
			{
				Name: "video_source", Kind: workload.KindString, Default: "home",
				AllowedValues: []string{"home", "my_videos", "search", "trending"},
				Description:   "Where to pick the video from.",
			},
			{
				Name: "search_term", Kind: workload.KindString, Default: "YouTube",
				Description: "Search term used when video_source is search.",
			},
		},
		Validate: func(b workload.Bag) error {
			if b.String("video_source") == "search" && !workload.Opt[string](b, "search_term").IsSome() {
				return failure.New(failure.Configuration, "param 'search_term' must be specified when video source is 'search'")
			}
			return nil
		},
		AutomationParams: func(b workload.Bag, _ workload.Paths) map[string]string {
			params := map[string]string{"video_source": b.String("video_source")}
			if params["video_source"] == "search" {
				params["search_term"] = underscored(b.String("search_term"))
			}
			return params
		},
		Teardown: pullLogs("youtube"),
	}
}
