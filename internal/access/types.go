package access

// Policy is how a page treats anonymous visitors.
type Policy string

const (
	PolicyFree          Policy = "free"
	PolicyLoginRequired Policy = "login_required"
	PolicySocialLogin   Policy = "social_login" // browsing pages gated behind the social login prompt
)

// State of the visitor: anonymous|authenticated
type State string

const (
	Anonymous     State = "anonymous"
	Authenticated State = "authenticated"
)

func StateOf(loggedIn bool) State {
	if loggedIn {
		return Authenticated
	}
	return Anonymous
}
