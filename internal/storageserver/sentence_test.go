package storageserver

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSentences_SplitsOnDelimitersAndSwallowsSpaces(t *testing.T) {
	got := ParseSentences("Hello world. How are you? Fine!")
	assert.Equal(t, []string{"Hello world.", "How are you?", "Fine!"}, got)
}

func TestParseSentences_TrailingFragmentIsFinalSentence(t *testing.T) {
	got := ParseSentences("Hello world")
	assert.Equal(t, []string{"Hello world"}, got)
}

func TestParseSentences_EmptyInputYieldsZeroSentences(t *testing.T) {
	assert.Nil(t, ParseSentences(""))
}

func TestJoinSentences_RoundTrips(t *testing.T) {
	original := "Hello world. How are you? Fine!"
	sentences := ParseSentences(original)
	reconstructed := JoinSentences(sentences)
	assert.Equal(t, ParseSentences(reconstructed), ParseSentences(original))
}

func TestInsertWords_ShiftsSubsequentWordsRight(t *testing.T) {
	got := InsertWords("Hello world", 1, "there beautiful")
	assert.Equal(t, "Hello there beautiful world", got)
}

func TestInsertWords_AppendAtWordCountPlusOne(t *testing.T) {
	got := InsertWords("Hello world", 3, "there")
	assert.Equal(t, "Hello world there", got)
}

func TestInsertWords_CausesResplitOnDelimiter(t *testing.T) {
	sentence := "Hello world"
	edited := InsertWords(sentence, 2, "there. How are you")
	assert.Equal(t, "Hello world there. How are you", edited)

	split := ParseSentences(edited)
	assert.Equal(t, []string{"Hello world there.", "How are you"}, split)
}

func TestWordCount(t *testing.T) {
	assert.Equal(t, 2, WordCount("Hello world"))
	assert.Equal(t, 0, WordCount(""))
}
