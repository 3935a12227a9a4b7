package md

import (
	"strconv"

	"src.mdgrid.dev/pkg/gridtable"
)

// Op represents an operation for the Codec.
type Op struct {
	Type OpType
	// For OpOrderedListStart (the start number) or OpHeading (the level).
	Number int
	// For OpCodeBlock (the info string).
	Info string
	// For OpBulletListStart and OpOrderedListStart.
	Tight bool
	// For OpCodeBlock, OpHTMLBlock and OpFrontmatter.
	Lines []string
	// For OpParagraph and OpHeading.
	Content []InlineOp
	// For OpTable.
	Table *gridtable.Table
	// For OpTable, whether the table was written as a GFM pipe table.
	Pipe bool
}

// OpType enumerates possible types of an Op.
type OpType uint

// Possible values for OpType.
const (
	OpThematicBreak OpType = iota
	OpHeading
	OpCodeBlock
	OpHTMLBlock
	OpParagraph
	OpTable
	OpFrontmatter
	OpBlockquoteStart
	OpBlockquoteEnd
	OpListItemStart
	OpListItemEnd
	OpBulletListStart
	OpBulletListEnd
	OpOrderedListStart
	OpOrderedListEnd
)

var opTypeNames = [...]string{
	OpThematicBreak:    "OpThematicBreak",
	OpHeading:          "OpHeading",
	OpCodeBlock:        "OpCodeBlock",
	OpHTMLBlock:        "OpHTMLBlock",
	OpParagraph:        "OpParagraph",
	OpTable:            "OpTable",
	OpFrontmatter:      "OpFrontmatter",
	OpBlockquoteStart:  "OpBlockquoteStart",
	OpBlockquoteEnd:    "OpBlockquoteEnd",
	OpListItemStart:    "OpListItemStart",
	OpListItemEnd:      "OpListItemEnd",
	OpBulletListStart:  "OpBulletListStart",
	OpBulletListEnd:    "OpBulletListEnd",
	OpOrderedListStart: "OpOrderedListStart",
	OpOrderedListEnd:   "OpOrderedListEnd",
}

func (t OpType) String() string {
	if int(t) < len(opTypeNames) {
		return opTypeNames[t]
	}
	return "OpType(" + strconv.Itoa(int(t)) + ")"
}

// InlineOp represents an inline operation.
type InlineOp struct {
	Type InlineOpType
	// OpText, OpCodeSpan, OpRawHTML, OpAutolink: Text content
	// OpLinkEnd, OpImage: title text
	// OpCheckbox: "x" or " "
	Text string
	// OpLinkEnd, OpImage, OpAutolink
	Dest string
	// OpImage
	Alt string
}

// InlineOpType enumerates possible types of an InlineOp.
type InlineOpType uint

// Possible values for InlineOpType.
const (
	OpText InlineOpType = iota
	OpCodeSpan
	OpRawHTML
	OpNewLine
	OpEmphasisStart
	OpEmphasisEnd
	OpStrongEmphasisStart
	OpStrongEmphasisEnd
	OpStrikethroughStart
	OpStrikethroughEnd
	OpLinkStart
	OpLinkEnd
	OpImage
	OpAutolink
	OpHardLineBreak
	OpCheckbox
)

var inlineOpTypeNames = [...]string{
	OpText:                "OpText",
	OpCodeSpan:            "OpCodeSpan",
	OpRawHTML:             "OpRawHTML",
	OpNewLine:             "OpNewLine",
	OpEmphasisStart:       "OpEmphasisStart",
	OpEmphasisEnd:         "OpEmphasisEnd",
	OpStrongEmphasisStart: "OpStrongEmphasisStart",
	OpStrongEmphasisEnd:   "OpStrongEmphasisEnd",
	OpStrikethroughStart:  "OpStrikethroughStart",
	OpStrikethroughEnd:    "OpStrikethroughEnd",
	OpLinkStart:           "OpLinkStart",
	OpLinkEnd:             "OpLinkEnd",
	OpImage:               "OpImage",
	OpAutolink:            "OpAutolink",
	OpHardLineBreak:       "OpHardLineBreak",
	OpCheckbox:            "OpCheckbox",
}

func (t InlineOpType) String() string {
	if int(t) < len(inlineOpTypeNames) {
		return inlineOpTypeNames[t]
	}
	return "InlineOpType(" + strconv.Itoa(int(t)) + ")"
}

type stack[T any] []T

func (s *stack[T]) push(v T) { *s = append(*s, v) }

func (s *stack[T]) pop() T {
	last := (*s)[len(*s)-1]
	*s = (*s)[:len(*s)-1]
	return last
}

func (s stack[T]) peek() T { return s[len(s)-1] }
