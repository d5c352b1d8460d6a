// Package lexer turns Robo source text into tokens.
//
// Scanning is a single forward pass. Delimiters, identifiers, keywords and
// unsigned integer literals are recognized; whitespace is skipped while
// line/column bookkeeping (0-based, column reset after every line feed)
// continues. Any other character stops the scan with an
// UnexpectedCharacter diagnostic at its exact position.
package lexer
