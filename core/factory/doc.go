// Package factory provides a small generic registry for building modules
// from configuration. A module is named by a type string and configured
// with a raw settings map; its factory decodes the map into a typed struct
// and returns the concrete implementation. The metrics layer selects its
// sinks this way:
//
//	reg := factory.NewRegistry[MetricsSink]()
//	reg.Register("influxdb", func(conf map[string]any) (MetricsSink, error) {
//	    var c influxConfig
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return newInfluxSink(c)
//	})
//	sink, err := reg.Create(factory.ModuleConfig{
//	    Type: "influxdb",
//	    Conf: map[string]any{"url": "http://localhost:8086"},
//	})
package factory
