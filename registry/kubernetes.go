package registry

import (
	"path"
	"strings"
)

// kubernetesCatalog is a representative subset of the well-known
// kubernetes-json-schema resource-kind -> schema URL catalog the
// original implementation ships in full; only a handful of common kinds
// are included here, and other kinds have no entry.
var kubernetesCatalog = map[string]string{
	"deployment":  "https://raw.githubusercontent.com/yannh/kubernetes-json-schema/master/v1.29.0/deployment-apps-v1.json",
	"service":     "https://raw.githubusercontent.com/yannh/kubernetes-json-schema/master/v1.29.0/service-v1.json",
	"configmap":   "https://raw.githubusercontent.com/yannh/kubernetes-json-schema/master/v1.29.0/configmap-v1.json",
	"pod":         "https://raw.githubusercontent.com/yannh/kubernetes-json-schema/master/v1.29.0/pod-v1.json",
	"statefulset": "https://raw.githubusercontent.com/yannh/kubernetes-json-schema/master/v1.29.0/statefulset-apps-v1.json",
}

// matchKubernetes guesses a resource kind from the document's filename
// (e.g. "deployment.yaml", "my-service.yml") and returns the catalog
// entry for it, if any. This filename heuristic is the only Kubernetes
// association the registry makes: nothing in this module reads a
// document's `kind:` field, and MatchKubernetesKind has no caller here.
func matchKubernetes(docPath string) []string {
	base := strings.ToLower(path.Base(docPath))
	base = strings.TrimSuffix(strings.TrimSuffix(base, ".yaml"), ".yml")
	for kind, uri := range kubernetesCatalog {
		if strings.Contains(base, kind) {
			return []string{uri}
		}
	}
	return nil
}

// MatchKubernetesKind returns the catalog entry for an explicit resource
// kind (as read from a document's `kind:` field), case-insensitively.
func MatchKubernetesKind(kind string) (string, bool) {
	uri, ok := kubernetesCatalog[strings.ToLower(kind)]
	return uri, ok
}
