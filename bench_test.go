package libinjection

import "testing"

var benchInputs = [][]byte{
	[]byte("1 UNION SELECT username, password FROM users"),
	[]byte("1' OR '1'='1"),
	[]byte("dog apple cat banana bar"),
	[]byte("https://example.com/search?q=hello+world&page=2"),
}

func BenchmarkClassify(b *testing.B) {
	d := NewDetector(nil, Options{})
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		d.Classify(benchInputs[i%len(benchInputs)])
	}
}

func BenchmarkTokenize(b *testing.B) {
	for i := 0; i < b.N; i++ {
		Tokenize(benchInputs[i%len(benchInputs)], 0)
	}
}
