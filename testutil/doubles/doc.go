// Package doubles provides shared test doubles for the registry packages.
package doubles
