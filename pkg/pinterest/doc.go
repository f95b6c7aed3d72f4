// Package pinterest talks HTTP to Pinterest and its pinimg CDN.
//
// Client implements both the page fetcher and the asset fetcher used by the
// download pipeline. It sends the headers a desktop browser would, follows
// redirects, applies separate page and asset timeouts and reports every
// failure as a typed fetch error with a network, timeout or http_status
// cause.
package pinterest
