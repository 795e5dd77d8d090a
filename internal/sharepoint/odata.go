package sharepoint

import (
	"net/url"
	"strconv"
	"strings"
)

// quoteLiteral renders s as an OData string literal.
func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// listEndpoint returns {site}/_api/web/lists/getbytitle('{title}')/{segment}.
func listEndpoint(site, listTitle, segment string) string {
	return site + "/_api/web/lists/getbytitle(" + url.PathEscape(quoteLiteral(listTitle)) + ")/" + segment
}

// fieldsFilter builds "(InternalName eq 'a' or InternalName eq 'b')".
func fieldsFilter(names []string) string {
	clauses := make([]string, len(names))
	for i, name := range names {
		clauses[i] = "InternalName eq " + quoteLiteral(name)
	}
	return "(" + strings.Join(clauses, " or ") + ")"
}

// encodeQuery joins OData system options in the given order. Values are
// percent-encoded with %20 for spaces.
func encodeQuery(pairs ...[2]string) string {
	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		value := strings.ReplaceAll(url.QueryEscape(p[1]), "+", "%20")
		parts = append(parts, p[0]+"="+value)
	}
	return strings.Join(parts, "&")
}

func fieldsURL(site, listTitle string, names []string) string {
	return listEndpoint(site, listTitle, "fields") + "?" + encodeQuery(
		[2]string{"$select", "Title,InternalName"},
		[2]string{"$filter", fieldsFilter(names)},
	)
}

func itemsURL(site, listTitle string, names []string, top int) string {
	return listEndpoint(site, listTitle, "items") + "?" + encodeQuery(
		[2]string{"$select", strings.Join(names, ",")},
		[2]string{"$top", strconv.Itoa(top)},
	)
}
