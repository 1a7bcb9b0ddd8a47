package log

import "testing"

func TestConfigure(t *testing.T) {
	if err := Configure("debug", true); err != nil {
		t.Fatal(err)
	}
	if err := Configure("bogus", true); err == nil {
		t.Fatal("expected error for unknown level")
	}
	// handles must survive reconfiguration
	if Global == nil || OrderMgr == nil || DatabaseMgr == nil {
		t.Fatal("nil sublogger handle after configure")
	}
	Infof(Global, "configured %s", "ok")
	Warnln(OrderMgr, "warn path")
}
