package events

var NewKafkaPublisherWithWriter = newKafkaPublisherWithWriter
