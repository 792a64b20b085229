package libinjection

import "sort"

// sqlKeywords maps upper-case words to their token type. Anything not
// listed is a bareword.
var sqlKeywords = map[string]byte{
	// statement starts
	"ALTER":    TYPE_EXPRESSION,
	"CREATE":   TYPE_EXPRESSION,
	"DECLARE":  TYPE_EXPRESSION,
	"DELETE":   TYPE_EXPRESSION,
	"DROP":     TYPE_EXPRESSION,
	"EXEC":     TYPE_EXPRESSION,
	"EXECUTE":  TYPE_EXPRESSION,
	"GRANT":    TYPE_EXPRESSION,
	"INSERT":   TYPE_EXPRESSION,
	"MERGE":    TYPE_EXPRESSION,
	"RENAME":   TYPE_EXPRESSION,
	"REPLACE":  TYPE_EXPRESSION,
	"REVOKE":   TYPE_EXPRESSION,
	"SELECT":   TYPE_EXPRESSION,
	"SHUTDOWN": TYPE_EXPRESSION,
	"TRUNCATE": TYPE_EXPRESSION,
	"UPDATE":   TYPE_EXPRESSION,

	"UNION":     TYPE_UNION,
	"INTERSECT": TYPE_UNION,
	"EXCEPT":    TYPE_UNION,

	"HAVING": TYPE_GROUP,
	"LIMIT":  TYPE_GROUP,

	"AND": TYPE_LOGIC_OPERATOR,
	"OR":  TYPE_LOGIC_OPERATOR,
	"XOR": TYPE_LOGIC_OPERATOR,

	"BETWEEN": TYPE_OPERATOR,
	"DIV":     TYPE_OPERATOR,
	"GLOB":    TYPE_OPERATOR,
	"ILIKE":   TYPE_OPERATOR,
	"IS":      TYPE_OPERATOR,
	"LIKE":    TYPE_OPERATOR,
	"MOD":     TYPE_OPERATOR,
	"NOT":     TYPE_OPERATOR,
	"REGEXP":  TYPE_OPERATOR,
	"RLIKE":   TYPE_OPERATOR,

	"COLLATE": TYPE_COLLATE,

	"FALSE": TYPE_NUMBER,
	"NULL":  TYPE_NUMBER,
	"TRUE":  TYPE_NUMBER,
	// oracle
	"BINARY_DOUBLE_INFINITY": TYPE_NUMBER,
	"BINARY_DOUBLE_NAN":      TYPE_NUMBER,
	"BINARY_FLOAT_INFINITY":  TYPE_NUMBER,
	"BINARY_FLOAT_NAN":       TYPE_NUMBER,

	"ADD":        TYPE_KEYWORD,
	"ALL":        TYPE_KEYWORD,
	"AS":         TYPE_KEYWORD,
	"ASC":        TYPE_KEYWORD,
	"BEGIN":      TYPE_KEYWORD,
	"CALL":       TYPE_KEYWORD,
	"CASCADE":    TYPE_KEYWORD,
	"CASE":       TYPE_KEYWORD,
	"COLUMN":     TYPE_KEYWORD,
	"CONSTRAINT": TYPE_KEYWORD,
	"CROSS":      TYPE_KEYWORD,
	"CURSOR":     TYPE_KEYWORD,
	"DESC":       TYPE_KEYWORD,
	"DISTINCT":   TYPE_KEYWORD,
	"DUAL":       TYPE_KEYWORD,
	"ELSE":       TYPE_KEYWORD,
	"END":        TYPE_KEYWORD,
	"ESCAPE":     TYPE_KEYWORD,
	"FETCH":      TYPE_KEYWORD,
	"FOR":        TYPE_KEYWORD,
	"FROM":       TYPE_KEYWORD,
	"GOTO":       TYPE_KEYWORD,
	"IN":         TYPE_KEYWORD,
	"INDEX":      TYPE_KEYWORD,
	"INNER":      TYPE_KEYWORD,
	"INTO":       TYPE_KEYWORD,
	"JOIN":       TYPE_KEYWORD,
	"KILL":       TYPE_KEYWORD,
	"OFFSET":     TYPE_KEYWORD,
	"ON":         TYPE_KEYWORD,
	"OUTER":      TYPE_KEYWORD,
	"PROCEDURE":  TYPE_KEYWORD,
	"RETURN":     TYPE_KEYWORD,
	"SET":        TYPE_KEYWORD,
	"SHOW":       TYPE_KEYWORD,
	"TABLE":      TYPE_KEYWORD,
	"TABLES":     TYPE_KEYWORD,
	"THEN":       TYPE_KEYWORD,
	"TOP":        TYPE_KEYWORD,
	"USING":      TYPE_KEYWORD,
	"VALUES":     TYPE_KEYWORD,
	"WAITFOR":    TYPE_KEYWORD,
	"WHEN":       TYPE_KEYWORD,
	"WHERE":      TYPE_KEYWORD,
	"WHILE":      TYPE_KEYWORD,
	"WITH":       TYPE_KEYWORD,
	// oracle
	"ALL_USERS": TYPE_KEYWORD,

	"BIGINT":        TYPE_SQLTYPE,
	"BINARY":        TYPE_SQLTYPE,
	"DATETIME":      TYPE_SQLTYPE,
	"DECIMAL":       TYPE_SQLTYPE,
	"DOUBLE":        TYPE_SQLTYPE,
	"INT":           TYPE_SQLTYPE,
	"INTEGER":       TYPE_SQLTYPE,
	"MEDIUMINT":     TYPE_SQLTYPE,
	"NCHAR":         TYPE_SQLTYPE,
	"NUMERIC":       TYPE_SQLTYPE,
	"NVARCHAR":      TYPE_SQLTYPE,
	"SIGNED":        TYPE_SQLTYPE,
	"SMALLDATETIME": TYPE_SQLTYPE,
	"SMALLINT":      TYPE_SQLTYPE,
	"TINYINT":       TYPE_SQLTYPE,
	"UNSIGNED":      TYPE_SQLTYPE,
	"VARCHAR":       TYPE_SQLTYPE,
	"VARCHAR2":      TYPE_SQLTYPE,

	"ABS":                 TYPE_FUNCTION,
	"ASCII":               TYPE_FUNCTION,
	"BENCHMARK":           TYPE_FUNCTION,
	"BIN":                 TYPE_FUNCTION,
	"CAST":                TYPE_FUNCTION,
	"CHAR":                TYPE_FUNCTION,
	"CHARINDEX":           TYPE_FUNCTION,
	"CHAR_LENGTH":         TYPE_FUNCTION,
	"CHR":                 TYPE_FUNCTION,
	"COALESCE":            TYPE_FUNCTION,
	"CONCAT":              TYPE_FUNCTION,
	"CONCAT_WS":           TYPE_FUNCTION,
	"CONNECTION_ID":       TYPE_FUNCTION,
	"CONVERT":             TYPE_FUNCTION,
	"COUNT":               TYPE_FUNCTION,
	"CURRENT_DATABASE":    TYPE_FUNCTION,
	"CURRENT_SCHEMA":      TYPE_FUNCTION,
	"DB_NAME":             TYPE_FUNCTION,
	"ELT":                 TYPE_FUNCTION,
	"EXISTS":              TYPE_FUNCTION,
	"EXP":                 TYPE_FUNCTION,
	"EXTRACTVALUE":        TYPE_FUNCTION,
	"FLOOR":               TYPE_FUNCTION,
	"GROUP_CONCAT":        TYPE_FUNCTION,
	"GTID_SUBSET":         TYPE_FUNCTION,
	"HEX":                 TYPE_FUNCTION,
	"IF":                  TYPE_FUNCTION,
	"IFNULL":              TYPE_FUNCTION,
	"ISNULL":              TYPE_FUNCTION,
	"JSON_EXTRACT":        TYPE_FUNCTION,
	"LAST_INSERT_ID":      TYPE_FUNCTION,
	"LEFT":                TYPE_FUNCTION,
	"LENGTH":              TYPE_FUNCTION,
	"LOAD_FILE":           TYPE_FUNCTION,
	"LOWER":               TYPE_FUNCTION,
	"MAKE_SET":            TYPE_FUNCTION,
	"MD5":                 TYPE_FUNCTION,
	"MID":                 TYPE_FUNCTION,
	"NAME_CONST":          TYPE_FUNCTION,
	"NVL":                 TYPE_FUNCTION,
	"OPENROWSET":          TYPE_FUNCTION,
	"ORD":                 TYPE_FUNCTION,
	"PG_SLEEP":            TYPE_FUNCTION,
	"POW":                 TYPE_FUNCTION,
	"RAND":                TYPE_FUNCTION,
	"REVERSE":             TYPE_FUNCTION,
	"RIGHT":               TYPE_FUNCTION,
	"ROW_COUNT":           TYPE_FUNCTION,
	"SCHEMA":              TYPE_FUNCTION,
	"SESSION_USER":        TYPE_FUNCTION,
	"SHA1":                TYPE_FUNCTION,
	"SLEEP":               TYPE_FUNCTION,
	"SP_EXECUTESQL":       TYPE_FUNCTION,
	"SP_PASSWORD":         TYPE_FUNCTION,
	"SUBSTR":              TYPE_FUNCTION,
	"SUBSTRING":           TYPE_FUNCTION,
	"SYSTEM_USER":         TYPE_FUNCTION,
	"TO_CHAR":             TYPE_FUNCTION,
	"UNHEX":               TYPE_FUNCTION,
	"UPDATEXML":           TYPE_FUNCTION,
	"UPPER":               TYPE_FUNCTION,
	"UTL_HTTP.REQUEST":    TYPE_FUNCTION,
	"VERSION":             TYPE_FUNCTION,
	"XP_CMDSHELL":         TYPE_FUNCTION,
	"XP_REGREAD":          TYPE_FUNCTION,
	"CTXSYS.DRITHSX.SN":   TYPE_FUNCTION,
	"SYS.STRAGG":          TYPE_FUNCTION,
	"SYS.FN_SQLVARBASESTR": TYPE_FUNCTION,
	// ORACLE
	// http://blog.red-database-security.com/2009/01/17/tutorial-oracle-sql-injection-in-webapps-part-i/print/
	"DBMS_PIPE.RECEIVE_MESSAGE":   TYPE_FUNCTION,
	"UTL_INADDR.GET_HOST_ADDRESS": TYPE_FUNCTION,
	"UTL_INADDR.GET_HOST_NAME":    TYPE_FUNCTION,
}

type phrase struct {
	Word string
	Type byte
}

// sqlPhrases are the multi-word keywords produced by mergeWords. Partial
// phrases ("IS NOT DISTINCT") exist so longer ones can be built pairwise.
var sqlPhrases = []phrase{
	{"ALTER DOMAIN", TYPE_KEYWORD},
	{"ALTER TABLE", TYPE_KEYWORD},
	// pgsql "AT TIME ZONE"
	{"AT TIME", TYPE_BAREWORD},
	{"AT TIME ZONE", TYPE_KEYWORD},
	{"CROSS JOIN", TYPE_KEYWORD},
	{"DELETE FROM", TYPE_EXPRESSION},
	{"FULL OUTER", TYPE_KEYWORD},
	{"GROUP BY", TYPE_GROUP},
	{"IN BOOLEAN", TYPE_BAREWORD},
	{"IN BOOLEAN MODE", TYPE_KEYWORD},
	{"INNER JOIN", TYPE_KEYWORD},
	{"INSERT INTO", TYPE_EXPRESSION},
	// oracle
	{"INTERSECT ALL", TYPE_UNION},
	{"INTO DUMPFILE", TYPE_KEYWORD},
	{"INTO OUTFILE", TYPE_KEYWORD},
	{"IS DISTINCT", TYPE_BAREWORD},
	{"IS DISTINCT FROM", TYPE_KEYWORD},
	{"IS NOT", TYPE_OPERATOR},
	{"IS NOT DISTINCT", TYPE_BAREWORD},
	{"IS NOT DISTINCT FROM", TYPE_KEYWORD},
	{"LEFT JOIN", TYPE_KEYWORD},
	{"LEFT OUTER", TYPE_KEYWORD},
	{"LEFT OUTER JOIN", TYPE_KEYWORD},
	// http://www.postgresql.org/docs/current/static/sql-lock.html
	{"LOCK TABLE", TYPE_KEYWORD},
	// http://dev.mysql.com/doc/refman/4.1/en/lock-tables.html
	{"LOCK TABLES", TYPE_KEYWORD},
	{"NATURAL FULL", TYPE_KEYWORD},
	{"NATURAL INNER", TYPE_KEYWORD},
	{"NATURAL JOIN", TYPE_KEYWORD},
	{"NATURAL LEFT", TYPE_KEYWORD},
	{"NATURAL OUTER", TYPE_KEYWORD},
	{"NATURAL RIGHT", TYPE_KEYWORD},
	{"NEXT VALUE", TYPE_BAREWORD},
	{"NEXT VALUE FOR", TYPE_KEYWORD},
	{"NOT BETWEEN", TYPE_OPERATOR},
	{"NOT IN", TYPE_KEYWORD},
	{"NOT LIKE", TYPE_OPERATOR},
	{"NOT REGEXP", TYPE_OPERATOR},
	{"NOT RLIKE", TYPE_OPERATOR},
	{"NOT SIMILAR", TYPE_OPERATOR},
	{"NOT SIMILAR TO", TYPE_OPERATOR},
	{"ORDER BY", TYPE_GROUP},
	{"OWN3D BY", TYPE_GROUP},
	{"READ WRITE", TYPE_KEYWORD},
	{"RIGHT JOIN", TYPE_KEYWORD},
	{"RIGHT OUTER", TYPE_KEYWORD},
	{"SELECT ALL", TYPE_EXPRESSION},
	{"SELECT DISTINCT", TYPE_EXPRESSION},
	{"SIMILAR TO", TYPE_OPERATOR},
	{"SOUNDS LIKE", TYPE_OPERATOR},
	{"UNION ALL", TYPE_UNION},
	{"UNION DISTINCT", TYPE_UNION},
	{"WAITFOR DELAY", TYPE_EXPRESSION},
	{"WAITFOR RECEIVE", TYPE_EXPRESSION},
	{"WAITFOR TIME", TYPE_EXPRESSION},
}

// sqlOperators2 holds the two byte operators. Anything else starting with
// an operator byte is a single byte operator.
var sqlOperators2 = map[string]byte{
	"!!": TYPE_OPERATOR, // http://www.postgresql.org/docs/9.1/static/functions-math.html
	"!<": TYPE_OPERATOR, // http://msdn.microsoft.com/en-us/library/ms188074.aspx
	"!=": TYPE_OPERATOR,
	"!>": TYPE_OPERATOR,
	"!~": TYPE_OPERATOR,
	"&&": TYPE_LOGIC_OPERATOR,
	"&=": TYPE_OPERATOR,
	"*=": TYPE_OPERATOR,
	"::": TYPE_OPERATOR,
	":=": TYPE_OPERATOR,
	"<<": TYPE_OPERATOR,
	"<=": TYPE_OPERATOR,
	"<>": TYPE_OPERATOR,
	"<@": TYPE_OPERATOR,
	"==": TYPE_OPERATOR,
	">=": TYPE_OPERATOR,
	">>": TYPE_OPERATOR,
	"|/": TYPE_OPERATOR,
	"|=": TYPE_OPERATOR,
	"||": TYPE_LOGIC_OPERATOR,
}

func init() {
	sort.Slice(sqlPhrases, func(i, j int) bool {
		return sqlPhrases[i].Word < sqlPhrases[j].Word
	})
}

// lookupWord returns the token type of word, or CHAR_NULL when it is not a
// keyword. Unless caseSensitive, ASCII letters are folded first.
func lookupWord(word string, caseSensitive bool) byte {
	if len(word) >= LIBINJECTION_SQLI_TOKEN_SIZE {
		return CHAR_NULL
	}
	if caseSensitive {
		return sqlKeywords[word]
	}
	var buf [LIBINJECTION_SQLI_TOKEN_SIZE]byte
	n := copy(buf[:], word)
	upper(buf[:n])
	return sqlKeywords[string(buf[:n])]
}

// lookupPhrase binary searches the phrase table with an upper-case key.
func lookupPhrase(key []byte) (phrase, bool) {
	i := sort.Search(len(sqlPhrases), func(i int) bool {
		return sqlPhrases[i].Word >= string(key)
	})
	if i < len(sqlPhrases) && sqlPhrases[i].Word == string(key) {
		return sqlPhrases[i], true
	}
	return phrase{}, false
}

func lookupOperator2(op string) byte {
	return sqlOperators2[op]
}
