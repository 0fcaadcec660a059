/*
Package dawg implements a Directed Acyclic Word Graph: a minimized
acyclic automaton that stores a lexicon while sharing both common
prefixes and common suffixes between entries.

* Words are added in sorted order and the graph is minimized
incrementally: after each insert, the suffix of the previous word that
the new word does not share is folded into previously seen equivalent
subtrees.
* The unit of traversal is the user-perceived character (an extended
grapheme cluster), never a byte or code point. "AYÒ" and "AYÓ" are
different words.
* Each node knows how many words are reachable below it, so the sealed
graph can answer counting questions without walking.

In general, to use it you first create a builder using dawg.New(). You
then Insert words in sorted order, which fails with ErrOutOfOrderInsert
if they are not. The same word may be repeated; duplicates collapse.

After all the words are added, call Finish() to seal the graph. A
sealed DAWG answers IsWord and Lookup (case-sensitively or not),
enumerates anagrams of a set of letters with FindAnagrams, and finds
the words formable from a letter pool around a fixed anchor with
ExtendWith. Sealed DAWGs are safe for concurrent readers.

A sealed DAWG may be written to disk with Save() and opened again later
using Load(), which rebuilds the same minimal graph in memory.
*/
package dawg
