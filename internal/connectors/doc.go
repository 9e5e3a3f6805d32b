// Package connectors holds clients for the remote content platforms a
// dataset is synchronised from. Each connector implements
// driven.ContentClient.
package connectors
