package libinjection

// State is the scratch space of one classification: the tokenizer over the
// input, the folded tokens and the fingerprint built from them. It holds
// spans into the input, never copies, and is discarded after the call.
type State struct {
	tok      Tokenizer
	list     []Token /* tokens handed to Fold instead of tok */
	listPos  int
	tokenvec [MaxFingerprintLen + 1]Token /* folded tokens plus one of lookahead */
	fplen    int                          /* length of fingerprint */
	fp       [MaxFingerprintLen + 1]byte
}

/*
 * fingerprint resets the state over s in the flags context, folds it and
 * fills st.fp. Needed more than once since we may test a single input
 * multiple times:
 * - as is
 * - single quote mode
 * - double quote mode
 */
func (st *State) fingerprint(s string, flags Flag, opts Options) {
	st.tok.reset(s, flags, opts)
	st.fplen = st.fold(opts.FingerprintLen)

	/*
	 * Check for magic PHP backquote comment If: * last token is of type
	 * "bareword" * And is quoted in a backtick * And isn't closed * And
	 * it's empty? Then convert it to comment
	 */
	if st.fplen > 2 {
		last := &st.tokenvec[st.fplen-1]
		if last.Type == TYPE_BAREWORD && last.StrOpen == CHAR_TICK &&
			last.Len == 0 && last.StrClose == CHAR_NULL {
			last.Type = TYPE_COMMENT
		}
	}

	evil := false
	for i := 0; i < st.fplen; i++ {
		st.fp[i] = st.tokenvec[i].Type
		if st.fp[i] == TYPE_EVIL {
			evil = true
		}
	}

	/*
	 * check for 'X' in pattern, and then clear out all tokens
	 *
	 * this means parsing could not be done accurately due to pgsql's double
	 * comments or other syntax that isn't consistent. Should be very rare
	 * false positive
	 */
	if evil {
		st.tokenvec[0] = Token{Type: TYPE_EVIL, Val: "X"}
		st.fp[0] = TYPE_EVIL
		st.fplen = 1
	}
}

func (st *State) next() (Token, bool) {
	if st.list == nil {
		return st.tok.Next()
	}
	if st.listPos >= len(st.list) {
		return Token{}, false
	}
	tok := st.list[st.listPos]
	st.listPos++
	return tok, true
}

// Fold reduces raw tokens to the folded tokens whose types form the
// fingerprint. At most fingerprintLen tokens are kept, zero means
// DefaultFingerprintLen.
func Fold(tokens []Token, fingerprintLen int) []Token {
	if len(tokens) == 0 {
		return nil
	}
	opts := Options{FingerprintLen: fingerprintLen}.withDefaults()
	st := State{list: tokens}
	n := st.fold(opts.FingerprintLen)
	out := make([]Token, n)
	copy(out, st.tokenvec[:n])
	return out
}
