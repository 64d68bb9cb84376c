// Package testsupport provides fixtures shared by package tests: isolated
// configurations, input files, and history stores.
package testsupport
