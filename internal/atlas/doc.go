// Package atlas reads and writes Atlas.ti XML exports.
//
// The export is decoded into a generic element tree so unknown content
// survives a round trip. Document layers a narrow query API over the tree:
// quotations of the primary document in document order, codes, memos, code
// families, and code-to-quotation links. Apply attaches the fields derived by
// the align package back onto quotation elements before the tree is written.
package atlas
