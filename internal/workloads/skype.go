/*
PURPOSE:
  Skype workload: signs in and places a timed voice or video call.

REQUIREMENTS:
  User-specified:
  - Login and contact are mandatory; duration and call type are optional.
  - The automation timeout grows with the call duration.

  Implementation-discovered:
  - Skype has no launchable main activity; it is started through a view
    intent after a force-stop, then given a moment to settle.
  - duration is bounded so the derived timeout cannot overflow.

ARCHITECTURE INTEGRATION:
  - Registered in: internal/workloads/registry.go

ERROR HANDLING:
  - Parameter problems are failure.Configuration via the Bag.

IMPLEMENTATION RULES:
  - The password goes to the automation as my_pwd and nowhere else.

USAGE:
  d := workloads.Skype()

SELF-HEALING INSTRUCTIONS:
  - If the call never starts, check SetupCommands and SettleDelay.

RELATED FILES:
  - internal/workloads/registry.go

MAINTENANCE:
  - Update views when Skype renames its activities.
*/

package workloads

import (
	"strconv"
	"time"

	"github.com/daryltucker/uxperf/internal/workload"
)

const (
	// callMargin is added to the call duration to cover sign-in and dialling.
	callMargin = 60 * time.Second
	// maxCallSeconds keeps the derived run timeout far from Duration overflow.
	maxCallSeconds = 24 * 60 * 60
)

// Skype signs in and places a voice or video call to a contact.
func Skype() *workload.Descriptor {
	const pkg = "com.skype.raider"
	return &workload.Descriptor{
		Name:    "skype",
		Package: pkg,
		// Skype has no main activity; it is launched through a view intent.
		Views: views(pkg,
			"com.skype.android.app.calling.CallActivity",
			"com.skype.android.app.calling.PreCallActivity",
			"com.skype.android.app.chat.ChatActivity",
			"com.skype.android.app.main.HubActivity",
			"com.skype.android.app.main.SplashActivity",
			"com.skype.android.app.signin.SignInActivity",
			"com.skype.android.app.signin.UnifiedLandingPageActivity",
		),
		Description: "Signs in to Skype and makes a timed voice or video call to a contact.",
		Parameters: []workload.Parameter{
			{Name: "login_name", Kind: workload.KindString, Mandatory: true, Description: "Account to sign in with."},
			{Name: "login_pass", Kind: workload.KindString, Mandatory: true, Description: "Password for login_name."},
			{Name: "contact_skypeid", Kind: workload.KindString, Mandatory: true, Description: "Skype ID of the contact to call."},
			{Name: "contact_name", Kind: workload.KindString, Mandatory: true, Description: "Contact display name as shown in the people list."},
			{
				Name: "duration", Kind: workload.KindInt, Default: 60,
				Constraint:     func(v interface{}) bool { return v.(int) >= 0 && v.(int) <= maxCallSeconds },
				ConstraintDesc: "must be between 0 and 86400 (one day)",
				Description:    "Call duration in seconds.",
			},
			{
				Name: "action", Kind: workload.KindString, Default: "video",
				AllowedValues: []string{"voice", "video"},
				Description:   "Type of call.",
			},
			workload.DumpsysEnabled,
		},
		ResultsFileParam: "results_file",
		RunTimeout: func(b workload.Bag) time.Duration {
			return time.Duration(b.Int("duration"))*time.Second + callMargin
		},
		AutomationParams: func(b workload.Bag, _ workload.Paths) map[string]string {
			return map[string]string{
				"my_id":    b.String("login_name"),
				"my_pwd":   b.String("login_pass"),
				"skypeid":  b.String("contact_skypeid"),
				"name":     underscored(b.String("contact_name")),
				"duration": strconv.Itoa(b.Int("duration")),
				"action":   b.String("action"),
			}
		},
		SetupCommands: func(workload.Bag) []string {
			return []string{
				"am force-stop " + pkg,
				"am start -W -a android.intent.action.VIEW -d skype:dummy?dummy",
			}
		},
		SettleDelay: time.Second,
		Teardown:    pullLogs("skype"),
	}
}
