// Package config provides configuration management for dnsmark.
//
// The package uses a Provider interface to abstract configuration loading.
// The filesystem provider picks a parser from the file extension: ".yaml" and
// ".yml" are decoded as YAML, everything else as INI.
//
// # INI layout
//
//	[DNS_QUERY]
//	domain = api.example.com
//	nameservers = 8.8.8.8, 1.1.1.1, 9.9.9.9
//	; optional, defaults to 5s
//	timeout = 5s
//
//	; optional section
//	[OPTIONS]
//	fallback_encoding = gbk
//	atomic_write = false
//
//	[OUTPUT_FILE_HOSTS]
//	path = /etc/hosts
//	format = "{IP} api.example.com"
//	marker = API_EXAMPLE
//
// Every section whose name starts with OUTPUT_FILE_ is an output target,
// processed in file order. Values are taken verbatim: surrounding quotes are
// kept so the engine can strip exactly one layer, and ';' or '#' inside a
// value is not treated as a comment. Comments therefore go on their own line.
//
// # YAML layout
//
//	dns_query:
//	  domain: api.example.com
//	  nameservers: 8.8.8.8, 1.1.1.1
//	  timeout: 5s
//	options:
//	  fallback_encoding: gbk
//	  atomic_write: true
//	output_files:
//	  - name: hosts
//	    path: /etc/hosts
//	    format: '"{IP} api.example.com"'
//	    marker: API_EXAMPLE
//
// # Validation
//
//   - domain must not be empty
//   - at least one nameserver after splitting on commas
//   - DNS timeout must be at least 1 second (default 5s)
//   - fallback encoding must be a known WHATWG encoding label (default gbk)
//   - each output needs a path and a marker, and a marker may be used only
//     once per path
//
// A missing file yields ErrNoConfig and an invalid one ErrInvalidConfig.
// Both are fatal to the caller; there is no built-in default configuration.
package config
