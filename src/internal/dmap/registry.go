package dmap

// Registry maps a 4-byte content code to its wire kind and a
// human-readable name, the same compatibility contract real DAAP
// clients rely on when they request /content-codes.
type Registry struct {
	entries map[string]entry
	order   []string
}

type entry struct {
	name string
	kind Kind
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]entry)}
}

// Register adds code with the given name and kind. Re-registering a
// code overwrites its entry but keeps its original position in Codes().
func (me *Registry) Register(code, name string, kind Kind) {
	if _, exists := me.entries[code]; !exists {
		me.order = append(me.order, code)
	}
	me.entries[code] = entry{name: name, kind: kind}
}

// Kind returns the wire kind registered for code
func (me *Registry) Kind(code string) (Kind, bool) {
	e, ok := me.entries[code]
	return e.kind, ok
}

// Name returns the human-readable DMAP name registered for code
func (me *Registry) Name(code string) (string, bool) {
	e, ok := me.entries[code]
	return e.name, ok
}

// Codes returns all registered codes in registration order
func (me *Registry) Codes() []string {
	out := make([]string, len(me.order))
	copy(out, me.order)
	return out
}

// DefaultRegistry is the fixed code bag daapd bundles: the codes used by
// server-info, login, update, content-codes, and the database/track/
// playlist listings. This table is the compatibility contract with
// clients.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	// status / listing envelope codes
	r.Register("mstt", "dmap.status", KindUint32)
	r.Register("muty", "dmap.updatetype", KindUint8)
	r.Register("mtco", "dmap.specifiedtotalcount", KindUint32)
	r.Register("mrco", "dmap.returnedcount", KindUint32)
	r.Register("mlcl", "dmap.listing", KindContainer)
	r.Register("mlit", "dmap.listingitem", KindContainer)
	r.Register("miid", "dmap.itemid", KindUint32)
	r.Register("minm", "dmap.itemname", KindString)
	r.Register("mper", "dmap.persistentid", KindUint64)
	r.Register("mimc", "dmap.itemcount", KindUint32)
	r.Register("mudl", "dmap.deletedidlisting", KindContainer)

	// server-info codes
	r.Register("msrv", "dmap.serverinforesponse", KindContainer)
	r.Register("mpro", "dmap.protocolversion", KindVersion)
	r.Register("apro", "daap.protocolversion", KindVersion)
	r.Register("msau", "dmap.authenticationmethod", KindUint8)
	r.Register("mstm", "dmap.timeoutinterval", KindUint32)
	r.Register("msdc", "dmap.databasescount", KindUint32)
	r.Register("msal", "dmap.supportsautologout", KindUint8)
	r.Register("msup", "dmap.supportsupdate", KindUint8)
	r.Register("mspi", "dmap.supportspersistentids", KindUint8)
	r.Register("msex", "dmap.supportsextensions", KindUint8)
	r.Register("msix", "dmap.supportsindex", KindUint8)
	r.Register("msbr", "dmap.supportsbrowse", KindUint8)
	r.Register("msqy", "dmap.supportsquery", KindUint8)
	r.Register("msrs", "dmap.supportsresolve", KindUint8)
	r.Register("mlog", "dmap.loginresponse", KindContainer)
	r.Register("mlid", "dmap.sessionid", KindUint32)

	// content-codes codes
	r.Register("mccr", "dmap.contentcodesresponse", KindContainer)
	r.Register("mdcl", "dmap.dictionary", KindContainer)
	r.Register("mcnm", "dmap.contentcodesnumber", KindString)
	r.Register("mcna", "dmap.contentcodesname", KindString)
	r.Register("mcty", "dmap.contentcodestype", KindUint16)

	// update codes
	r.Register("mupd", "dmap.updateresponse", KindContainer)
	r.Register("musr", "dmap.serverrevision", KindUint32)

	// database / playlist / container listing codes
	r.Register("avdb", "daap.serverdatabases", KindContainer)
	r.Register("adbs", "daap.databasesongs", KindContainer)
	r.Register("aply", "daap.databaseplaylists", KindContainer)
	r.Register("apso", "daap.playlistsongs", KindContainer)
	r.Register("abpl", "daap.baseplaylist", KindUint8)
	r.Register("mcti", "dmap.containeritemid", KindUint32)
	r.Register("agal", "daap.albumgrouping", KindContainer)
	r.Register("agar", "daap.artistgrouping", KindContainer)

	// track metadata (daap.* namespace)
	r.Register("asal", "daap.songalbum", KindString)
	r.Register("asar", "daap.songartist", KindString)
	r.Register("asgn", "daap.songgenre", KindString)
	r.Register("astn", "daap.songtracknumber", KindUint16)
	r.Register("asdn", "daap.songdiscnumber", KindUint16)
	r.Register("astm", "daap.songtime", KindUint32)
	r.Register("asfm", "daap.songformat", KindString)
	r.Register("asbr", "daap.songbitrate", KindUint16)
	r.Register("ascd", "daap.songcodectype", KindString)
	r.Register("asai", "daap.songalbumid", KindUint64)
	r.Register("asul", "daap.songdataurl", KindString)

	return r
}
