package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"graphkit/pkg/ui"
)

func newGuideCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "guide",
		Short:       "Show how to set up an app and obtain a first token",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipConfigAnnotation: "true"},
		Run: func(cmd *cobra.Command, args []string) {
			showAppSetupGuide()
		},
	}
}

func showAppSetupGuide() {
	w := ui.Output
	rule := strings.Repeat("=", 72)

	fmt.Fprintln(w, rule)
	ui.PrintHighlight("GRAPH API APP SETUP")
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "STEP 1: Create an app")
	fmt.Fprintln(w, "   - Go to https://developers.facebook.com/apps and create an app")
	fmt.Fprintln(w, "   - For Instagram, add the 'Instagram' product with Instagram login")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "STEP 2: Register a redirect URI")
	fmt.Fprintln(w, "   - Facebook: Facebook Login > Settings > Valid OAuth Redirect URIs")
	fmt.Fprintln(w, "   - Instagram: Instagram > API setup > Business login settings")
	fmt.Fprintln(w, "   - The URI must match redirect_uri in your config exactly")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "STEP 3: Configure graphctl")
	fmt.Fprintln(w, "   graphctl config init")
	fmt.Fprintln(w, "   export GRAPHKIT_APP_SECRET=...   # App settings > Basic")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "STEP 4: Log in")
	fmt.Fprintln(w, "   graphctl login-url               # open the printed URL")
	fmt.Fprintln(w, "   graphctl token exchange <code>   # code from the redirect")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "STEP 5: Keep the token alive")
	fmt.Fprintln(w, "   graphctl token extend            # short-lived to long-lived (60 days)")
	fmt.Fprintln(w, "   graphctl token refresh           # Instagram: renew a long-lived token")
	fmt.Fprintln(w)

	ui.PrintWarning("SECURITY")
	fmt.Fprintln(w, "   - The app secret and access tokens grant API access; never share them")
	fmt.Fprintln(w, "   - Tokens are stored in the system keychain or an encrypted file")
	fmt.Fprintln(w, rule)
}
