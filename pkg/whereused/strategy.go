package whereused

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/vibingsteamer/mcp-abap-adt/pkg/adt"
)

// MaxStrategies bounds how many remote queries a single resolution may issue.
const MaxStrategies = 5

const (
	usageReferencesPath = "/sap/bc/adt/repository/informationsystem/usageReferences"
	textSearchPath      = "/sap/bc/adt/repository/informationsystem/textsearch"

	usageLookupTimeout = 15 * time.Second
	codeSearchTimeout  = 30 * time.Second
)

// ResponseKind tells the classifier which marker set applies to a body.
type ResponseKind string

const (
	KindXML   ResponseKind = "XML"
	KindJSON  ResponseKind = "JSON"
	KindPlain ResponseKind = "PLAIN"
)

// QueryStrategy describes one remote interpretation of a query.
//
// Templates may contain {name} (path-escaped object name), {rawName}
// (object name as is) and {maxResults}.
type QueryStrategy struct {
	Name             string
	RemoteObjectType string
	EndpointTemplate string
	QueryTemplate    map[string]string
	Method           string
	Body             string
	ContentType      string
	Accept           string
	ResponseKind     ResponseKind
	Timeout          time.Duration
}

// Build interpolates the strategy for q and returns the request path and options.
func (s QueryStrategy) Build(q ObjectQuery) (string, *adt.RequestOptions) {
	r := strings.NewReplacer(
		"{name}", url.PathEscape(q.Name),
		"{rawName}", q.Name,
		"{maxResults}", strconv.Itoa(q.MaxResults),
	)

	query := url.Values{}
	for k, v := range s.QueryTemplate {
		query.Set(k, r.Replace(v))
	}

	opts := &adt.RequestOptions{
		Method:      s.Method,
		Query:       query,
		ContentType: s.ContentType,
		Accept:      s.Accept,
		Timeout:     s.Timeout,
	}
	if s.Body != "" {
		opts.Body = []byte(s.Body)
	}
	return r.Replace(s.EndpointTemplate), opts
}

// usageStrategy queries the usage index for the object at objectURI.
func usageStrategy(name, remoteType, objectURI string) QueryStrategy {
	return QueryStrategy{
		Name:             name,
		RemoteObjectType: remoteType,
		EndpointTemplate: usageReferencesPath,
		QueryTemplate: map[string]string{
			"uri":        objectURI,
			"maxResults": "{maxResults}",
		},
		Method:       http.MethodPost,
		Body:         string(adt.UsageReferenceRequestBody()),
		ContentType:  "application/*",
		Accept:       "application/*",
		ResponseKind: KindXML,
		Timeout:      usageLookupTimeout,
	}
}

var primaryStrategies = map[ObjectType]QueryStrategy{
	TypeClass:     usageStrategy("class", "CLAS/OC", "/sap/bc/adt/oo/classes/{name}"),
	TypeInterface: usageStrategy("interface", "INTF/OI", "/sap/bc/adt/oo/interfaces/{name}"),
	TypeProgram:   usageStrategy("program", "PROG/P", "/sap/bc/adt/programs/programs/{name}"),
	TypeFunction:  usageStrategy("function module", "FUGR/FF", "/sap/bc/adt/vit/wb/object_type/fugrff/object_name/{name}"),
	TypeTable:     usageStrategy("table", "TABL/DT", "/sap/bc/adt/ddic/tables/{name}"),
	TypeStructure: usageStrategy("structure", "TABL/DS", "/sap/bc/adt/ddic/structures/{name}"),
}

// fallbackStrategies run after the primary one, typed lookups before the
// free-text search.
var fallbackStrategies = []QueryStrategy{
	usageStrategy("structure", "TABL/DS", "/sap/bc/adt/ddic/structures/{name}"),
	usageStrategy("dictionary object", "DDIC", "/sap/bc/adt/vit/wb/object_type/tabl/object_name/{name}"),
	usageStrategy("data element", "DTEL/DE", "/sap/bc/adt/ddic/dataelements/{name}"),
	{
		Name:             "code search",
		RemoteObjectType: "SEARCH",
		EndpointTemplate: textSearchPath,
		QueryTemplate: map[string]string{
			"searchString": "{rawName}",
			"maxResults":   "{maxResults}",
		},
		Method:       http.MethodGet,
		Accept:       "application/xml",
		ResponseKind: KindXML,
		Timeout:      codeSearchTimeout,
	},
}

// SelectStrategies returns the ordered strategies for q: the declared type's
// lookup first (when the type is known), then the fixed fallbacks. A fallback
// that repeats an earlier remote object type is skipped.
func SelectStrategies(q ObjectQuery) []QueryStrategy {
	strategies := make([]QueryStrategy, 0, MaxStrategies)
	if primary, ok := primaryStrategies[q.DeclaredType]; ok {
		strategies = append(strategies, primary)
	}

	for _, fb := range fallbackStrategies {
		if len(strategies) == MaxStrategies {
			break
		}
		if containsRemoteType(strategies, fb.RemoteObjectType) {
			continue
		}
		strategies = append(strategies, fb)
	}
	return strategies
}

func containsRemoteType(strategies []QueryStrategy, remoteType string) bool {
	for _, s := range strategies {
		if s.RemoteObjectType == remoteType {
			return true
		}
	}
	return false
}
