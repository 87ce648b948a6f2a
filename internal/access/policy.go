package access

import (
	"net/url"
	"path"
	"strings"
)

// pages is the single list of gated pages, keyed by page id. Anything
// missing is free.
var pages = map[string]Policy{
	"perfil":          PolicyLoginRequired,
	"mis-colecciones": PolicyLoginRequired,
	"ajustes":         PolicyLoginRequired,
	"dashboard":       PolicyLoginRequired,
	"subir-obra":      PolicyLoginRequired,
	"mis-obras":       PolicyLoginRequired,

	"obras":           PolicySocialLogin,
	"artistas":        PolicySocialLogin,
	"categorias":      PolicySocialLogin,
	"obra-detalle":    PolicySocialLogin,
	"artista-detalle": PolicySocialLogin,
	"abstracto":       PolicySocialLogin,
	"moderno":         PolicySocialLogin,
	"clasico":         PolicySocialLogin,
}

// PageID reduces a pathname or URL to the key used in the page table:
// the last path segment, lower-cased, without query, fragment or ".html".
// The site root is "index".
func PageID(p string) string {
	p = strings.TrimSpace(p)
	if u, err := url.Parse(p); err == nil {
		p = u.Path
	} else if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	p = strings.TrimRight(p, "/")
	if p == "" {
		return "index"
	}
	id := strings.ToLower(path.Base(p))
	id = strings.TrimSuffix(id, ".html")
	if id == "" || id == "." || id == "/" {
		return "index"
	}
	return id
}

func PolicyFor(p string) Policy {
	if policy, ok := pages[PageID(p)]; ok {
		return policy
	}
	return PolicyFree
}

// IsAccessAllowed: authenticated visitors see everything, anonymous ones
// only free pages.
func IsAccessAllowed(p string, state State) bool {
	return state == Authenticated || PolicyFor(p) == PolicyFree
}

// Gated lists the page ids with the given policy, for diagnostics.
func Gated(policy Policy) []string {
	out := []string{}
	for id, p := range pages {
		if p == policy {
			out = append(out, id)
		}
	}
	return out
}
